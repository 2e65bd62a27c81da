package loopback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

// Host is the only address the listener binds to.
const Host = "127.0.0.1"

// ErrBind is returned when no loopback socket could be acquired.
var ErrBind = errors.New("failed to bind loopback listener")

var listen = net.Listen

// Option configures a [Listener].
type Option func(*Listener)

// WithLogger sets the logger used for stage failures and lifecycle messages.
func WithLogger(l *log.Logger) Option {
	return func(ln *Listener) {
		if l != nil {
			ln.logger = l
		}
	}
}

// WithTimeout bounds how long the listener waits for the browser to connect and, separately, to send its request.
// Zero waits indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(ln *Listener) {
		if d > 0 {
			ln.timeout = d
		}
	}
}

// Listener is one bound loopback socket waiting for its single callback connection.
type Listener struct {
	ln      net.Listener
	port    int
	timeout time.Duration
	logger  *log.Logger
}

// Listen binds 127.0.0.1 on an OS-assigned port without accepting anything yet.
func Listen(opts ...Option) (*Listener, error) {
	l := &Listener{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(l)
	}

	ln, err := listen("tcp", net.JoinHostPort(Host, "0"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBind, err)
	}

	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		ln.Close()
		return nil, fmt.Errorf("%w: unexpected address type %T", ErrBind, ln.Addr())
	}

	l.ln = ln
	l.port = addr.Port
	return l, nil
}

// Start binds the loopback listener, launches [Listener.Serve] in the background and returns the assigned port.
//
// The returned port is ready to be used in a redirect URI. Cancelling ctx closes the socket and ends the attempt
// without a notification.
func Start(ctx context.Context, sink Sink, opts ...Option) (int, error) {
	l, err := Listen(opts...)
	if err != nil {
		return 0, err
	}

	l.logger.Debug("loopback listener bound", "addr", l.Addr())
	go l.Serve(ctx, sink)
	return l.port, nil
}

// Port returns the OS-assigned port.
func (l *Listener) Port() int {
	return l.port
}

// Addr returns the bound host:port.
func (l *Listener) Addr() string {
	return net.JoinHostPort(Host, strconv.Itoa(l.port))
}

// RedirectURI returns the URL the OAuth provider should redirect to.
func (l *Listener) RedirectURI() string {
	return "http://" + l.Addr()
}

// Close releases the socket. Serve returns without a notification if it was still waiting.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Serve handles the single callback connection: accept, read, parse, respond, notify.
//
// Every failure ends the attempt quietly. The listener is closed as soon as one connection has been accepted, and
// the response is always written before the sink is called.
func (l *Listener) Serve(ctx context.Context, sink Sink) {
	if sink == nil {
		sink = discard{}
	}
	logger := l.logger.With("port", l.port)

	defer l.ln.Close()
	stop := context.AfterFunc(ctx, func() { l.ln.Close() })
	defer stop()

	if l.timeout > 0 {
		if tl, ok := l.ln.(*net.TCPListener); ok {
			tl.SetDeadline(time.Now().Add(l.timeout))
		}
	}

	conn, err := l.ln.Accept()
	if err != nil {
		logger.Debug("accept failed", "error", err)
		return
	}
	l.ln.Close()
	defer conn.Close()

	stopConn := context.AfterFunc(ctx, func() { conn.Close() })
	defer stopConn()

	if l.timeout > 0 {
		conn.SetDeadline(time.Now().Add(l.timeout))
	}

	buf := make([]byte, MaxRequestSize)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		logger.Debug("read failed", "bytes", n, "error", err)
		return
	}

	result := ExtractCode(buf[:n])
	logger.Debug("callback parsed", "result", result)

	if _, err := ResponseFor(result).WriteTo(conn); err != nil {
		logger.Debug("write failed", "error", err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.CloseWrite()
	}

	if code, ok := result.Value(); ok {
		sink.Publish(CallbackNotification{Code: code})
	}
}
