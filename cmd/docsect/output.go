package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/docsect/internal/pipeline"
)

var (
	// titleStyle for document titles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	// dimStyle for labels and metadata
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// errorStyle for error prefixes
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// boxStyle for summaries
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)
)

// summary renders the stderr report for a sectioned document.
func summary(source string, r *pipeline.Result) string {
	return boxStyle.Render(fmt.Sprintf("%s\n%s %s\n%s %d  %s %d\n%s %d  %s %d",
		titleStyle.Render(r.Title),
		dimStyle.Render("Source:"), source,
		dimStyle.Render("Sections:"), len(r.Sections),
		dimStyle.Render("Outline entries:"), len(r.TOC),
		dimStyle.Render("Page numbers:"), len(r.PageNumbers),
		dimStyle.Render("Stripped:"), r.Stripped,
	))
}
