//go:build !windows

package tray

// pickFolder has no dialog off Windows; the save directory stays whatever
// the config file says.
func pickFolder(title string) (string, bool) {
	return "", false
}
