package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/mcontrol/internal/shared"
	tu "github.com/desertthunder/mcontrol/internal/testing"
	"github.com/urfave/cli/v3"
)

func runApp(r *Runner, args ...string) error {
	app := &cli.Command{Name: "mcontrol", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"mcontrol"}, args...))
}

// writeTestConfig saves a config that keeps the database inside a temp dir and returns its path.
func writeTestConfig(t *testing.T, oauthTimeout time.Duration) string {
	t.Helper()
	dir := t.TempDir()

	config := shared.DefaultConfig()
	config.OAuth.ClientID = "client-123"
	config.OAuth.Timeout = shared.Duration{Duration: oauthTimeout}
	config.Listener.AttemptsPerMinute = 0
	config.Database.Path = filepath.Join(dir, "mcontrol.db")
	config.Log.Level = "error"

	path := filepath.Join(dir, "config.toml")
	if err := shared.SaveConfig(path, config); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func newTestRunner(output io.Writer, opener shared.Opener) *Runner {
	return NewRunner(RunnerOpts{
		Logger: shared.NewLogger(io.Discard),
		Output: output,
		Opener: opener,
	})
}

func TestSetup(t *testing.T) {
	t.Run("Config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		output := &bytes.Buffer{}
		runner := newTestRunner(output, nil)

		if err := runApp(runner, "setup", "config", "--config", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(output.String(), shared.ClientIDEnv) {
			t.Errorf("expected next steps to mention %s, got %q", shared.ClientIDEnv, output.String())
		}

		if err := runApp(runner, "setup", "config", "--config", path); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("Config With Client ID", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := runApp(newTestRunner(&bytes.Buffer{}, nil), "setup", "config", "--config", path, "--client-id", "abc.apps"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		config, err := shared.LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to load written config: %v", err)
		}
		if config.OAuth.ClientID != "abc.apps" {
			t.Errorf("expected client ID abc.apps, got %q", config.OAuth.ClientID)
		}
	})

	t.Run("Database", func(t *testing.T) {
		path := writeTestConfig(t, time.Second)
		output := &bytes.Buffer{}

		if err := runApp(newTestRunner(output, nil), "setup", "database", "--config", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(filepath.Dir(path), "mcontrol.db"))
		if !strings.Contains(output.String(), "Database ready") {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func TestLogin(t *testing.T) {
	t.Run("Prints Code And Records History", func(t *testing.T) {
		path := writeTestConfig(t, 2*time.Second)
		browser := &tu.BrowserStub{Callback: "code=4%2F0Ab&scope=email"}
		output := &bytes.Buffer{}

		if err := runApp(newTestRunner(output, browser.Open), "login", "--config", path, "--print-code"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		browser.Wait(t)

		if !strings.HasSuffix(output.String(), "4/0Ab\n") {
			t.Errorf("expected code on last line, got %q", output.String())
		}

		history := &bytes.Buffer{}
		if err := runApp(newTestRunner(history, nil), "history", "--config", path, "--format", "csv"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(history.String(), ",received,") {
			t.Errorf("expected a received attempt in history, got %q", history.String())
		}
		if strings.Contains(history.String(), "4/0Ab") {
			t.Error("the authorization code must not be persisted")
		}
	})

	t.Run("No Browser Times Out", func(t *testing.T) {
		path := writeTestConfig(t, 50*time.Millisecond)
		browser := &tu.BrowserStub{}
		output := &bytes.Buffer{}

		err := runApp(newTestRunner(output, browser.Open), "login", "--config", path, "--no-browser")
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
		if len(browser.Opened()) != 0 {
			t.Error("browser should not be opened with --no-browser")
		}
		if !strings.Contains(output.String(), "Open this URL") {
			t.Errorf("expected printed URL, got %q", output.String())
		}
	})

	t.Run("Missing Client ID", func(t *testing.T) {
		t.Setenv(shared.ClientIDEnv, "")
		path := filepath.Join(t.TempDir(), "config.toml")
		config := shared.DefaultConfig()
		config.Database.Path = filepath.Join(filepath.Dir(path), "mcontrol.db")
		if err := shared.SaveConfig(path, config); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		err := runApp(newTestRunner(&bytes.Buffer{}, nil), "login", "--config", path)
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})
}

func TestListen(t *testing.T) {
	t.Run("Prints Port Then Code", func(t *testing.T) {
		pr, pw := io.Pipe()
		runner := newTestRunner(pw, nil)

		done := make(chan error, 1)
		go func() {
			done <- runApp(runner, "listen", "--json", "--timeout", "2s")
			pw.Close()
		}()

		lines := bufio.NewReader(pr)
		first, err := lines.ReadString('\n')
		if err != nil {
			t.Fatalf("failed to read port line: %v", err)
		}

		var started listenStarted
		if err := json.Unmarshal([]byte(first), &started); err != nil {
			t.Fatalf("invalid port line %q: %v", first, err)
		}
		if started.RedirectURI != "http://127.0.0.1:"+strconv.Itoa(started.Port) {
			t.Errorf("unexpected redirect URI %s", started.RedirectURI)
		}

		tu.SendRaw(t, "127.0.0.1:"+strconv.Itoa(started.Port), "GET /?code=xyz HTTP/1.1\r\n\r\n")

		second, err := lines.ReadString('\n')
		if err != nil {
			t.Fatalf("failed to read code line: %v", err)
		}
		if strings.TrimSpace(second) != `{"code":"xyz"}` {
			t.Errorf("unexpected code line %q", second)
		}

		select {
		case err := <-done:
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("listen did not return")
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		output := &bytes.Buffer{}
		err := runApp(newTestRunner(output, nil), "listen", "--timeout", "50ms")
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}

		if port, err := strconv.Atoi(strings.TrimSpace(output.String())); err != nil || port < 1 {
			t.Errorf("expected a port line, got %q", output.String())
		}
	})
}

func TestHistory(t *testing.T) {
	t.Run("Invalid Status", func(t *testing.T) {
		path := writeTestConfig(t, time.Second)
		err := runApp(newTestRunner(&bytes.Buffer{}, nil), "history", "--config", path, "--status", "done")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("Invalid Format", func(t *testing.T) {
		path := writeTestConfig(t, time.Second)
		err := runApp(newTestRunner(&bytes.Buffer{}, nil), "history", "--config", path, "--format", "yaml")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Export To File", func(t *testing.T) {
		path := writeTestConfig(t, time.Second)
		out := filepath.Join(t.TempDir(), "history.md")
		output := &bytes.Buffer{}

		if err := runApp(newTestRunner(output, nil), "history", "--config", path, "--format", "markdown", "--output", out); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(tu.MustReadFile(t, out), "# Sign-in attempts") {
			t.Error("expected markdown export")
		}
		if !strings.Contains(output.String(), "0 attempts written") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("Prune", func(t *testing.T) {
		path := writeTestConfig(t, time.Second)
		output := &bytes.Buffer{}

		if err := runApp(newTestRunner(output, nil), "history", "prune", "--config", path, "--older-than", "1h"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Pruned 0 attempts") {
			t.Errorf("unexpected output %q", output.String())
		}

		err := runApp(newTestRunner(output, nil), "history", "prune", "--config", path, "--older-than", "0s")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}
