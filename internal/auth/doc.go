// Package auth drives a browser sign-in through the loopback listener.
//
// A [Flow] owns the provider settings, the attempt throttle and the attempt history. [Flow.Begin] binds a
// listener, records a pending attempt and builds the authorization URL for it. The returned [Session] waits for
// the code from its own listener and records how the attempt ended. Every code is also emitted as an
// oauth-callback event on the application [events.Bus] for other subscribers.
//
// Only the authorization code is produced here. Exchanging it for tokens is the caller's job.
package auth
