package loopback

// EventName is the application event carrying a [CallbackNotification].
const EventName = "oauth-callback"

// CallbackNotification is published once an authorization code has been received.
type CallbackNotification struct {
	Code string `json:"code"`
}

// Sink receives callback notifications. Publish is called at most once per listener, from the listener's goroutine.
type Sink interface {
	Publish(n CallbackNotification)
}

// SinkFunc adapts a function to [Sink].
type SinkFunc func(CallbackNotification)

func (f SinkFunc) Publish(n CallbackNotification) { f(n) }

// ChanSink delivers notifications on a channel without blocking.
// The channel should be buffered; a notification is dropped if it is full.
type ChanSink chan<- CallbackNotification

func (c ChanSink) Publish(n CallbackNotification) {
	select {
	case c <- n:
	default:
	}
}

// discard is used when Start is given a nil sink.
type discard struct{}

func (discard) Publish(CallbackNotification) {}
