package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgallion1/docsect/internal/typography"
	"github.com/spf13/cobra"
)

var (
	sectionsLocale  string
	sectionsRules   string
	sectionsAnchors bool
	sectionsJSON    bool
)

var sectionsCmd = &cobra.Command{
	Use:   "sections FILE",
	Short: "Print the document regrouped into sections",
	Long: `Load FILE (a path or an http(s) URL), strip running page numbers, regroup the
body into sections and print the reassembled HTML. A summary is written to
stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := sectionizer(sectionsLocale, sectionsRules, sectionsAnchors)
		if err != nil {
			return err
		}
		doc, err := load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		res, err := s.Run(doc)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if sectionsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(out, res.HTML)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), summary(args[0], res))
		return nil
	},
}

// ruleConfig enables the comma-separated rules for locale.
func ruleConfig(locale, rules string) typography.Config {
	cfg := typography.Config{Locale: locale}
	for _, name := range strings.Split(rules, ",") {
		if name = strings.TrimSpace(name); name != "" {
			cfg.Rules = append(cfg.Rules, typography.Rule{Name: name, Enabled: true})
		}
	}
	return cfg
}

func init() {
	sectionsCmd.Flags().StringVar(&sectionsLocale, "typography-locale", "en", "Locale for quotes and spacing")
	sectionsCmd.Flags().StringVar(&sectionsRules, "rules", "quotes,dash,ellipsis,nbsp", "Comma-separated typography rules (empty disables typography)")
	sectionsCmd.Flags().BoolVar(&sectionsAnchors, "anchors", true, "Give headings without an id a generated anchor")
	sectionsCmd.Flags().BoolVar(&sectionsJSON, "json", false, "Print the full result as JSON")

	rootCmd.AddCommand(sectionsCmd)
}
