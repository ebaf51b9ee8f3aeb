package game

import "fmt"

// FormatElapsed renders seconds as MM:SS, or H:MM:SS from one hour up.
// Negative values render as zero.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := seconds / 60 % 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
