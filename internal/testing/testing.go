// package testing contains shared testing utilities: failing writers, file assertions, a browser stub
// and a raw TCP client for the loopback listener.
package testing

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// BrowserStub stands in for a browser opener. It records every URL it is asked to open and, when Callback is
// set, follows the redirect_uri query parameter the way a browser would after consent.
type BrowserStub struct {
	// Callback is the query string sent to the redirect URI, e.g. "code=abc&state=xyz". Empty skips the request.
	Callback string
	// Err is returned from Open without contacting the redirect URI.
	Err error

	mu     sync.Mutex
	opened []string
	done   chan struct{}
}

// Open satisfies the browser opener signature. The callback request runs in the background.
func (b *BrowserStub) Open(authURL string) error {
	b.mu.Lock()
	b.opened = append(b.opened, authURL)
	if b.done == nil {
		b.done = make(chan struct{})
	}
	done := b.done
	b.mu.Unlock()

	if b.Err != nil {
		return b.Err
	}
	if b.Callback == "" {
		return nil
	}

	u, err := url.Parse(authURL)
	if err != nil {
		return err
	}
	redirect := u.Query().Get("redirect_uri")
	if redirect == "" {
		return errors.New("auth URL has no redirect_uri")
	}

	go func() {
		defer close(done)
		client := &http.Client{Timeout: 2 * time.Second}
		if resp, err := client.Get(redirect + "/?" + b.Callback); err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}()
	return nil
}

// Opened returns the URLs passed to Open.
func (b *BrowserStub) Opened() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.opened...)
}

// Wait blocks until the background callback request has finished.
func (b *BrowserStub) Wait(t *testing.T) {
	t.Helper()
	b.mu.Lock()
	done := b.done
	b.mu.Unlock()
	if done == nil {
		t.Fatal("browser was never opened")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback request did not finish")
	}
}

// SendRaw writes a raw request to addr and returns everything the peer sends back before closing.
func SendRaw(t *testing.T, addr, request string) []byte {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("Failed to connect to %s: %v", addr, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * time.Second))

	if _, err := conn.Write([]byte(request)); err != nil {
		t.Fatalf("Failed to write request: %v", err)
	}
	raw, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}
	return raw
}
