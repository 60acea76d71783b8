package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dgallion1/docsect/internal/parser"
	"github.com/dgallion1/docsect/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	verbose   bool
	pdftotext bool
)

var rootCmd = &cobra.Command{
	Use:   "docsect",
	Short: "Split documents into table-of-contents sections",
	Long: `docsect restructures HTML, Markdown, PDF, DOCX, CSV and text documents into
nested sections that start at headings, strips running page numbers from
paginated sources and applies locale-aware typography to the output.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log processing details to stderr")
	rootCmd.PersistentFlags().BoolVar(&pdftotext, "pdftotext", true, "Fall back to pdftotext when the PDF library fails")
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func logger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func load(ctx context.Context, locator string) (*parser.Document, error) {
	doc, err := parser.Load(ctx, locator, parser.Options{FallbackPdftotext: pdftotext})
	if err != nil {
		return nil, err
	}
	logger().Debug("loaded document", "locator", locator, "title", doc.Title, "pages", len(doc.Pages))
	return doc, nil
}

func sectionizer(locale, rules string, anchors bool) (*pipeline.Sectionizer, error) {
	return pipeline.NewSectionizer(ruleConfig(locale, rules), anchors)
}
