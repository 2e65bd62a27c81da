package loopback

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
)

// callbackPage renders the shared page chrome around a heading and message.
func callbackPage(title, heading, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>
`, title, heading, message)
}

var (
	successPage = callbackPage(
		"Sign-in Successful",
		"&#10003; Sign-in successful",
		"You can close this window and return to mcontrol.",
	)
	failurePage = callbackPage(
		"Sign-in Failed",
		"&#10007; Sign-in failed",
		"No authorization code was received. Please return to mcontrol and try signing in again.",
	)
)

// Response is the fixed reply written to the browser.
type Response struct {
	Status int
	Body   string
}

// ResponseFor selects the page for an authorization result.
func ResponseFor(result AuthorizationResult) Response {
	if result.Found() {
		return Response{Status: http.StatusOK, Body: successPage}
	}
	return Response{Status: http.StatusBadRequest, Body: failurePage}
}

// Bytes renders the full HTTP/1.1 message. Content-Length counts bytes, not runes.
func (r Response) Bytes() []byte {
	head := fmt.Sprintf(
		"HTTP/1.1 %d %s\r\nContent-Type: text/html\r\nContent-Length: %d\r\nConnection: close\r\n\r\n",
		r.Status, http.StatusText(r.Status), len(r.Body),
	)
	return append([]byte(head), r.Body...)
}

// WriteTo writes the response through a buffered writer and flushes it.
func (r Response) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	n, err := bw.Write(r.Bytes())
	if err != nil {
		return int64(n), err
	}
	return int64(n), bw.Flush()
}
