package pipeline

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docsect/internal/doctree"
	"github.com/dgallion1/docsect/internal/markup"
	"github.com/dgallion1/docsect/internal/pagenum"
	"github.com/dgallion1/docsect/internal/parser"
	"github.com/dgallion1/docsect/internal/sections"
	"github.com/dgallion1/docsect/internal/toc"
	"github.com/dgallion1/docsect/internal/typography"
)

// Sectionizer turns parsed documents into sectioned output. It holds no
// per-document state and is safe for concurrent use.
type Sectionizer struct {
	typo    *typography.Typographer
	anchors bool
}

// NewSectionizer validates the typography settings. A config without rules
// still closes void elements.
func NewSectionizer(typo typography.Config, anchors bool) (*Sectionizer, error) {
	t, err := typography.New(typo)
	if err != nil {
		return nil, fmt.Errorf("typography: %w", err)
	}
	return &Sectionizer{typo: t, anchors: anchors}, nil
}

// StripPageNumbers removes the inferred running page numbers from a
// paginated document in place. Documents with fewer than two pages are left
// alone.
func (s *Sectionizer) StripPageNumbers(doc *parser.Document) pagenum.Result {
	if len(doc.Pages) < 2 {
		return pagenum.Result{}
	}
	return pagenum.Run(doc.Pages)
}

// Sections builds the sections of doc and its outline.
func (s *Sectionizer) Sections(doc *parser.Document) ([]*doctree.Node, []toc.Entry) {
	secs := sections.Build(doc.Root)
	if s.anchors {
		toc.AssignAnchors(secs)
	}
	return secs, toc.Build(secs)
}

// Render writes the reassembled document and each section as markup with
// typography applied.
func (s *Sectionizer) Render(doc *parser.Document, secs []*doctree.Node) (string, []string, error) {
	var sb strings.Builder
	if err := markup.RenderDocument(&sb, markup.Reassemble(doc.Root, secs)); err != nil {
		return "", nil, err
	}
	full := s.typo.Apply(sb.String())

	parts := make([]string, 0, len(secs))
	for _, sec := range secs {
		if sec == nil {
			continue
		}
		html, err := markup.RenderString(sec)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, s.typo.Apply(html))
	}
	return full, parts, nil
}

// Run performs every step on doc. doc is modified by page number stripping.
func (s *Sectionizer) Run(doc *parser.Document) (*Result, error) {
	pn := s.StripPageNumbers(doc)
	secs, entries := s.Sections(doc)
	full, parts, err := s.Render(doc, secs)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return &Result{
		Title:       doc.Title,
		HTML:        full,
		Sections:    parts,
		TOC:         entries,
		PageNumbers: pn.Sequence,
		Stripped:    pn.Stripped,
	}, nil
}
