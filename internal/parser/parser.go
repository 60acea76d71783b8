package parser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/docsect/internal/doctree"
	"github.com/dgallion1/docsect/internal/markup"
)

// Document is a parsed source. Root is the whole document; Pages holds the
// per-page subtrees of Root for paginated sources and is empty otherwise.
type Document struct {
	Title string
	Root  *doctree.Node
	Pages []*doctree.Node
}

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*Document, error)
}

// Options tune the parsers returned by ForFile.
type Options struct {
	FallbackPdftotext bool
	// Policy overrides the sanitizer allow-list for HTML and Markdown.
	Policy *markup.Policy
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".xhtml":    true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	policy := markup.DefaultPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{Policy: policy}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm", ".xhtml":
		return &HTMLParser{Policy: policy}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

var httpClient = &http.Client{Timeout: 60 * time.Second}

// Load reads and parses the document at locator, which is a file path or an
// http(s) URL. Read and parse failures are returned to the caller.
func Load(ctx context.Context, locator string, opts Options) (*Document, error) {
	rc, filename, err := open(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	p, err := ForFile(filename, opts)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(rc, filename)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", locator, err)
	}
	return doc, nil
}

func open(ctx context.Context, locator string) (io.ReadCloser, string, error) {
	u, err := url.Parse(locator)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
		if err != nil {
			return nil, "", fmt.Errorf("create request: %w", err)
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("fetch %s: %w", locator, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, "", fmt.Errorf("fetch %s: status %d", locator, resp.StatusCode)
		}
		return resp.Body, path.Base(u.Path), nil
	}
	f, err := os.Open(locator)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", locator, err)
	}
	return f, filepath.Base(locator), nil
}

// newDocument builds html > (head > title), body > children.
func newDocument(title string, children ...*doctree.Node) *doctree.Node {
	head := doctree.Element("head", nil)
	if title != "" {
		head.Children = append(head.Children, doctree.Element("title", nil, doctree.Text(title)))
	}
	body := doctree.Element("body", nil, children...)
	return doctree.Element(markup.DocumentName, nil, doctree.Element("html", nil, head, body))
}

// newPage wraps the content of one physical page.
func newPage(n int, children ...*doctree.Node) *doctree.Node {
	return doctree.Element("div", []doctree.Attr{
		{Key: "class", Val: PageClass},
		{Key: "data-page", Val: fmt.Sprint(n)},
	}, children...)
}

func paragraph(text string) *doctree.Node {
	return doctree.Element("p", nil, doctree.Text(text))
}

// PageClass marks elements that hold one physical page.
const PageClass = "page"

// findPages returns the outermost elements whose class list contains
// PageClass.
func findPages(root *doctree.Node) []*doctree.Node {
	var pages []*doctree.Node
	doctree.Walk(root, func(n *doctree.Node) bool {
		if !n.IsElement() {
			return false
		}
		class, _ := n.Attr("class")
		for _, tok := range strings.Fields(class) {
			if tok == PageClass {
				pages = append(pages, n)
				return false
			}
		}
		return true
	})
	return pages
}

func trimExt(filename string, exts ...string) string {
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(filename), ext) {
			return filename[:len(filename)-len(ext)]
		}
	}
	return filename
}
