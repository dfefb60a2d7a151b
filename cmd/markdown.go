package cmd

import (
	"flag"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// markdownStyle picks a dark or light theme on a terminal, and plain text otherwise.
var markdownStyle = styles.AutoStyle

var rawMarkdown = flag.Bool("raw", false, "Print reports as markdown source, for files and pipes")

// renderMarkdown renders md for the terminal, md itself if that fails.
func renderMarkdown(md string) string {
	if *rawMarkdown {
		return md
	}
	out, err := glamour.Render(md, markdownStyle)
	if err != nil {
		return md
	}
	return out
}

// printMarkdown prints md to the reports output.
func printMarkdown(md string) {
	fmt.Fprint(stdout, renderMarkdown(md))
}
