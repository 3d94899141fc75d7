package display

import "gobblet/internal/core"

// Terminal color codes
const (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
)

// Prompt returns a colored prompt string
func Prompt(text string) string {
	return Yellow + text + Yellow + " > " + Reset
}

// ColorFor returns the color used for a player's name.
func ColorFor(o core.Owner) string {
	if o == core.Player1 {
		return Blue
	}
	return Red
}
