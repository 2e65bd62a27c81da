package auth

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/mcontrol/internal/events"
	"github.com/desertthunder/mcontrol/internal/loopback"
	"github.com/desertthunder/mcontrol/internal/models"
	"github.com/desertthunder/mcontrol/internal/shared"
)

// AttemptStore persists sign-in attempts. Failures are logged and never abort a sign-in.
type AttemptStore interface {
	Create(attempt *models.Attempt) error
	Update(attempt *models.Attempt) error
}

// Option configures a [Flow].
type Option func(*Flow)

// WithLogger sets the flow logger. It is also handed to every listener.
func WithLogger(l *log.Logger) Option {
	return func(f *Flow) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithStore records attempts in s.
func WithStore(s AttemptStore) Option {
	return func(f *Flow) { f.store = s }
}

// WithOpener replaces the browser launcher. A nil opener makes [Flow.SignIn] print the URL instead.
func WithOpener(o shared.Opener) Option {
	return func(f *Flow) { f.opener = o }
}

// WithOutput sets where [Flow.SignIn] prints the authorization URL when no browser is opened.
func WithOutput(w io.Writer) Option {
	return func(f *Flow) {
		if w != nil {
			f.out = w
		}
	}
}

// Flow starts sign-in attempts against a single OAuth provider.
type Flow struct {
	config  *shared.Config
	bus     *events.Bus
	limiter *rate.Limiter
	store   AttemptStore
	opener  shared.Opener
	out     io.Writer
	logger  *log.Logger
}

// NewFlow creates a flow from config. Callback notifications are published on bus.
func NewFlow(config *shared.Config, bus *events.Bus, opts ...Option) *Flow {
	if config == nil {
		config = shared.DefaultConfig()
	}
	f := &Flow{
		config: config,
		bus:    bus,
		opener: shared.OpenBrowser,
		out:    os.Stdout,
		logger: log.New(io.Discard),
	}
	if f.bus == nil {
		f.bus = events.NewBus(f.logger)
	}

	if per := config.Listener.AttemptsPerMinute; per > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(float64(per)/60), max(config.Listener.Burst, 1))
	}

	for _, opt := range opts {
		opt(f)
	}
	return f
}

// BusSink publishes callback notifications on bus under [loopback.EventName].
func BusSink(bus *events.Bus) loopback.Sink {
	return loopback.SinkFunc(func(n loopback.CallbackNotification) {
		bus.Emit(loopback.EventName, n)
	})
}

// Tee returns a sink that hands each notification to every sink in order.
func Tee(sinks ...loopback.Sink) loopback.Sink {
	return loopback.SinkFunc(func(n loopback.CallbackNotification) {
		for _, sink := range sinks {
			sink.Publish(n)
		}
	})
}

// Begin binds a loopback listener and returns a session waiting on it.
//
// Cancelling ctx closes the listener. Errors wrap [shared.ErrMissingConfig], [shared.ErrRateLimited] or
// [loopback.ErrBind].
func (f *Flow) Begin(ctx context.Context) (*Session, error) {
	if strings.TrimSpace(f.config.OAuth.ClientID) == "" {
		return nil, fmt.Errorf("%w: oauth.client_id is empty and %s is not set", shared.ErrMissingConfig, shared.ClientIDEnv)
	}
	if f.limiter != nil && !f.limiter.Allow() {
		return nil, fmt.Errorf("%w: at most %d sign-in attempts per minute", shared.ErrRateLimited, f.config.Listener.AttemptsPerMinute)
	}

	attempt := models.NewAttempt(0)
	f.create(attempt)

	ln, err := loopback.Listen(
		loopback.WithLogger(f.logger),
		loopback.WithTimeout(f.config.Listener.Timeout.Duration),
	)
	if err != nil {
		attempt.Finish(models.StatusBindFailed, err)
		f.update(attempt)
		f.logger.Error("could not start loopback listener", "error", err)
		return nil, err
	}

	attempt.Bind(ln.Port(), ln.RedirectURI())
	f.update(attempt)

	codes := make(chan loopback.CallbackNotification, 1)
	lctx, cancel := context.WithCancel(ctx)
	go ln.Serve(lctx, Tee(loopback.ChanSink(codes), BusSink(f.bus)))

	s := &Session{
		AuthURL:     f.AuthCodeURL(ln.RedirectURI()),
		RedirectURI: ln.RedirectURI(),
		Port:        ln.Port(),
		flow:        f,
		attempt:     attempt,
		codes:       codes,
		done:        lctx.Done(),
		cancel:      cancel,
		timeout:     f.config.OAuth.Timeout.Duration,
	}
	f.logger.Info("waiting for sign-in callback", "port", s.Port, "attempt", attempt.ID())
	return s, nil
}

// SignIn runs a whole attempt: begin, open the browser, wait for the code.
func (f *Flow) SignIn(ctx context.Context) (string, error) {
	s, err := f.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer s.Close()

	f.open(s.AuthURL)
	return s.Wait(ctx)
}

// AuthCodeURL builds the provider authorization URL for redirectURI.
func (f *Flow) AuthCodeURL(redirectURI string) string {
	conf := &oauth2.Config{
		ClientID:    f.config.OAuth.ClientID,
		RedirectURL: redirectURI,
		Scopes:      f.config.OAuth.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  f.config.OAuth.AuthURL,
			TokenURL: f.config.OAuth.TokenURL,
		},
	}

	var opts []oauth2.AuthCodeOption
	switch at := f.config.OAuth.AccessType; at {
	case "":
	case "offline":
		opts = append(opts, oauth2.AccessTypeOffline)
	default:
		opts = append(opts, oauth2.SetAuthURLParam("access_type", at))
	}
	if p := f.config.OAuth.Prompt; p != "" {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", p))
	}
	return conf.AuthCodeURL("", opts...)
}

func (f *Flow) open(authURL string) {
	if f.opener != nil {
		err := f.opener(authURL)
		if err == nil {
			return
		}
		f.logger.Warn("could not open browser", "error", err)
	}
	fmt.Fprintf(f.out, "Open this URL in your browser to sign in:\n\n  %s\n\n", authURL)
}

func (f *Flow) create(a *models.Attempt) {
	if f.store == nil {
		return
	}
	if err := f.store.Create(a); err != nil {
		f.logger.Warn("failed to record sign-in attempt", "error", err)
	}
}

func (f *Flow) update(a *models.Attempt) {
	if f.store == nil || a.ID() == "" {
		return
	}
	if err := f.store.Update(a); err != nil {
		f.logger.Warn("failed to update sign-in attempt", "attempt", a.ID(), "error", err)
	}
}

// Session is one pending sign-in attempt.
type Session struct {
	AuthURL     string
	RedirectURI string
	Port        int

	flow    *Flow
	attempt *models.Attempt
	codes   <-chan loopback.CallbackNotification
	done    <-chan struct{}
	cancel  context.CancelFunc
	timeout time.Duration

	once sync.Once
	code string
	err  error
}

// Attempt returns the attempt record for this session.
func (s *Session) Attempt() *models.Attempt {
	return s.attempt
}

// Wait blocks until this session's listener delivers a code, the session timeout or ctx cancellation. The
// listener is closed when Wait returns. Later calls return the first result.
func (s *Session) Wait(ctx context.Context) (string, error) {
	s.once.Do(func() { s.code, s.err = s.wait(ctx) })
	return s.code, s.err
}

// Close abandons the session and closes its listener. A pending or later Wait returns [shared.ErrCancelled].
func (s *Session) Close() {
	s.release()
	s.once.Do(func() {
		s.err = s.finish(models.StatusCancelled, fmt.Errorf("%w: session closed", shared.ErrCancelled))
	})
}

func (s *Session) release() {
	s.cancel()
}

func (s *Session) wait(ctx context.Context) (string, error) {
	defer s.release()

	var expired <-chan time.Time
	if s.timeout > 0 {
		t := time.NewTimer(s.timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case n := <-s.codes:
		s.finish(models.StatusReceived, nil)
		return n.Code, nil
	case <-expired:
		return "", s.finish(models.StatusTimedOut, fmt.Errorf("%w: no callback within %s", shared.ErrTimeout, s.timeout))
	case <-ctx.Done():
		return "", s.finish(models.StatusCancelled, fmt.Errorf("%w: %v", shared.ErrCancelled, ctx.Err()))
	case <-s.done:
		return "", s.finish(models.StatusCancelled, fmt.Errorf("%w: session closed", shared.ErrCancelled))
	}
}

func (s *Session) finish(status models.AttemptStatus, reason error) error {
	s.attempt.Finish(status, reason)
	s.flow.update(s.attempt)

	logger := s.flow.logger.With("attempt", s.attempt.ID(), "status", status)
	if reason != nil {
		logger.Warn("sign-in attempt ended", "error", reason)
	} else {
		logger.Info("sign-in callback received", "elapsed", s.attempt.Duration())
	}
	return reason
}
