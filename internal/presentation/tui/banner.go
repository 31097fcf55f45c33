package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`        _     _ _               _     _       `, "#34d399"},
	{`   __ _(_) __| | |__  _   _  __| | __| |_   _ `, "#2dd4bf"},
	{`  / _' | |/ _' | '_ \| | | |/ _' |/ _' | | | |`, "#22d3ee"},
	{` | (_| | | (_| | |_) | |_| | (_| | (_| | |_| |`, "#38bdf8"},
	{`  \__,_|_|\__,_|_.__/ \__,_|\__,_|\__,_|\__, |`, "#60a5fa"},
	{`                                         |___/ `, "#818cf8"},
}

// PrintBanner writes the colored banner to w. Colors degrade to the
// terminal's profile and vanish when w is not a terminal.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// StatusLine summarises where the user is in the guided journey, as
// Markdown so it goes through the same renderer as the reply.
func StatusLine(chapter int, progress float64) string {
	return fmt.Sprintf("_chapter %d of 6 · estimate %d%%_", chapter, int(progress*100+0.5))
}
