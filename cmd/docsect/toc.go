package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var tocAnchors bool

var tocCmd = &cobra.Command{
	Use:   "toc FILE",
	Short: "Print the table-of-contents outline of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := sectionizer("", "", tocAnchors)
		if err != nil {
			return err
		}
		doc, err := load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		s.StripPageNumbers(doc)
		_, entries := s.Sections(doc)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(doc.Title))
		for _, e := range entries {
			line := strings.Repeat("  ", max(e.Level-1, 0)) + e.Title
			if e.Anchor != "" {
				line += " " + dimStyle.Render("#"+e.Anchor)
			}
			fmt.Fprintf(out, "%s %s\n", line, dimStyle.Render(fmt.Sprintf("(%d words)", e.Words)))
		}
		return nil
	},
}

func init() {
	tocCmd.Flags().BoolVar(&tocAnchors, "anchors", false, "Show generated anchors for headings without an id")
	rootCmd.AddCommand(tocCmd)
}
