// Package loopback implements the one-shot redirect catcher used to finish a browser OAuth sign-in.
//
// # Listener
//
// [Start] binds a TCP socket on 127.0.0.1 with an OS-assigned port, returns the port right away and hands the
// socket to a background goroutine running [Listener.Serve]. [Listen] exposes the bind step on its own for callers
// that want to drive [Listener.Serve] themselves.
//
// # Connection Handling
//
// Serve accepts exactly one connection and closes the listener immediately afterwards, so a second connection to
// the same port is refused. It performs a single read of at most [MaxRequestSize] bytes, looks only at the request
// line, and writes one of two fixed HTML pages:
//
//	HTTP/1.1 200 OK           when a non-empty code query parameter was found
//	HTTP/1.1 400 Bad Request  otherwise
//
// Headers, bodies and keep-alive are ignored; every response declares Connection: close.
//
// # Notification
//
// When a code was found the handler publishes one [CallbackNotification] to the injected [Sink] after the response
// has been written. Nothing is published for any failure. Stage failures (accept, read, write) are logged at debug
// level and never surface to the caller of Start: only bind failures, wrapped with [ErrBind], do.
//
// # Timeouts
//
// By default the handler waits indefinitely for the browser. [WithTimeout] sets a deadline covering both the accept
// and the read, and cancelling the context given to Start closes the socket.
package loopback
