// Package notification shows short-lived toast popups for capture outcomes.
// Popups are fire-and-forget: a failure to display one is logged, never
// propagated into the capture flow.
package notification

// Show displays a transient popup with the given message. The popup closes
// itself after a few seconds or on click. Long messages are truncated so the
// toast stays readable.
func Show(message string) error {
	const maxLen = 300
	if len(message) > maxLen {
		message = message[:maxLen] + "..."
	}
	return showToast(message)
}
