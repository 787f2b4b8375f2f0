package events

import "log"

// Toast severities understood by the frontend's notification widget.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Notifier is the transient-feedback collaborator.  Coordinators call
// Toast for every user-visible message; the frontend renders it, the
// service shell additionally logs it.
type Notifier interface {
	Toast(message, severity string)
}

// LogNotifier writes toasts to the standard logger.  Used as the
// default collaborator and in tests.
type LogNotifier struct{}

// Toast logs the message with its severity.
func (LogNotifier) Toast(message, severity string) {
	log.Printf("toast [%s]: %s", severity, message)
}
