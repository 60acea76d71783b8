package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docsect/internal/doctree"
)

// TextParser handles plain text files. Blank lines separate paragraphs.
// Form feeds separate pages; a file with form feeds yields one page element
// per page.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	title := trimExt(filename, ".txt")
	text := string(raw)

	if strings.Contains(text, "\f") {
		return pagedDocument(title, splitPages(text)), nil
	}

	paras, err := paragraphs(text)
	if err != nil {
		return nil, err
	}
	var children []*doctree.Node
	for _, para := range paras {
		children = append(children, paragraph(para))
	}
	return &Document{Title: title, Root: newDocument(title, children...)}, nil
}

func paragraphs(text string) ([]string, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paras []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paras = append(paras, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paras = append(paras, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return paras, nil
}
