package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the bpmngen banner to w.
func PrintBanner(w io.Writer, profile termenv.Profile) {
	lines := []struct {
		text, color string
	}{
		{" _                                       ", "#818cf8"},
		{"| |__  _ __  _ __ ___  _ __   __ _  ___ _ __  ", "#a78bfa"},
		{"| '_ \\| '_ \\| '_ ` _ \\| '_ \\ / _` |/ _ \\ '_ \\ ", "#c084fc"},
		{"| |_) | |_) | | | | | | | | | (_| |  __/ | | |", "#e879f9"},
		{"|_.__/| .__/|_| |_| |_|_| |_|\\__, |\\___|_| |_|", "#f472b6"},
		{"      |_|                    |___/             ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, profile.String(l.text).Foreground(profile.Color(l.color)))
	}
	fmt.Fprintln(w)
}
