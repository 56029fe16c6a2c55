package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner, coloured when out is a terminal.
func PrintBanner(out io.Writer) {
	p := Profile(out)
	lines := []struct {
		text, color string
	}{
		{"  _____           _             ", "#818cf8"},
		{" |_   _|   _ _ __(_)_ __   __ _ ", "#a78bfa"},
		{"   | || | | | '__| | '_ \\ / _` |", "#c084fc"},
		{"   | || |_| | |  | | | | | (_| |", "#e879f9"},
		{"   |_| \\__,_|_|  |_|_| |_|\\__, |", "#f472b6"},
		{"                          |___/ ", "#fb7185"},
	}

	fmt.Fprintln(out)
	for _, l := range lines {
		fmt.Fprintln(out, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(out)
}
