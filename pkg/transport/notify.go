package transport

import "github.com/sirupsen/logrus"

// Notifier surfaces user-facing messages raised by the transport. The CLI
// uses a logrus-backed notifier; tests substitute a recording one.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) {
	f(message)
}

// NewLogNotifier returns a Notifier that surfaces messages as warnings.
func NewLogNotifier(log logrus.FieldLogger) Notifier {
	return NotifierFunc(func(message string) {
		log.Warn(message)
	})
}
