// ABOUTME: Shared user-facing types decoupled from the wizard and scene packages
// ABOUTME: Breaks the wizard → scenes dependency on a common alert shape

package types

// Alert is a dismissible user-visible failure.
type Alert struct {
	Title   string
	Message string
}

// NewAlert returns an alert with title and message.
func NewAlert(title, message string) *Alert {
	return &Alert{Title: title, Message: message}
}

func (a *Alert) Error() string {
	return a.Title + ": " + a.Message
}
