package main

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docsect/internal/doctree"
	"github.com/dgallion1/docsect/internal/pagenum"
	"github.com/dgallion1/docsect/internal/sections"
	"github.com/spf13/cobra"
)

var pagenumsCmd = &cobra.Command{
	Use:   "pagenums FILE...",
	Short: "Infer the running page numbers of a paginated document",
	Long: `With one argument, infer the page numbers of a paginated document (PDF, or
text with form feeds). With several arguments, every file is one page, in the
order given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var pages []*doctree.Node
		for _, arg := range args {
			doc, err := load(cmd.Context(), arg)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				pages = doc.Pages
				break
			}
			if body := sections.FindBody(doc.Root); body != nil {
				pages = append(pages, body)
			} else {
				pages = append(pages, doc.Root)
			}
		}

		res := pagenum.Run(pages)
		nums := make([]string, len(res.Sequence))
		for i, n := range res.Sequence {
			nums[i] = fmt.Sprint(n)
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(nums, " "))
		fmt.Fprintln(cmd.ErrOrStderr(), boxStyle.Render(fmt.Sprintf("%s %d\n%s %d\n%s %d",
			dimStyle.Render("Pages:"), len(pages),
			dimStyle.Render("Numbered:"), len(res.Sequence),
			dimStyle.Render("Stripped:"), res.Stripped,
		)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pagenumsCmd)
}
