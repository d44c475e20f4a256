//go:build !windows

package notification

import "log"

// ShowBlockingError logs the error on platforms without a dialog.
func ShowBlockingError(title, message string) {
	log.Printf("%s: %s", title, message)
}

func showToast(message string) error {
	log.Printf("notification: %s", message)
	return nil
}
