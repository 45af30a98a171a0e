package output

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

const fallbackWidth = 80

// PrintLeft rewrites the current line with text, left aligned and padded to
// the terminal width so stale characters are overwritten.
func PrintLeft(text string) {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width = fallbackWidth
	}

	padding := width - len(text)
	if padding < 0 {
		padding = 0
	}

	fmt.Printf("\r%s%s", text, spaces(padding))
}

func spaces(n int) string {
	return fmt.Sprintf("%*s", n, "")
}

func ProgressBar(percent int, width int) string {
	if percent > 100 {
		percent = 100
	}
	filled := (percent * width) / 100
	return fmt.Sprintf("%s%s",
		strings.Repeat("█", filled),
		strings.Repeat(" ", width-filled),
	)
}
