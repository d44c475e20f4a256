package gui

// escapeStateDown interprets a GetAsyncKeyState result for the poll timer.
// Only the high "currently held" bit counts: the low "pressed since last
// call" latch can carry an Escape typed long before the overlay opened.
func escapeStateDown(state uint16) bool {
	return state&0x8000 != 0
}
