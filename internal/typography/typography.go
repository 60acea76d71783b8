// Package typography applies locale-aware typographic substitutions to
// rendered markup.
package typography

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
)

// Rule names understood by New.
const (
	RuleQuotes   = "quotes"
	RuleDash     = "dash"
	RuleEllipsis = "ellipsis"
	RuleNbsp     = "nbsp"
)

// Rule toggles one substitution. Rules run in the order given.
type Rule struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// Config is the global locale plus the ordered rule list.
type Config struct {
	Locale string `json:"locale"`
	Rules  []Rule `json:"rules"`
}

// DefaultConfig enables every rule for the given locale.
func DefaultConfig(locale string) Config {
	return Config{
		Locale: locale,
		Rules: []Rule{
			{Name: RuleQuotes, Enabled: true},
			{Name: RuleDash, Enabled: true},
			{Name: RuleEllipsis, Enabled: true},
			{Name: RuleNbsp, Enabled: true},
		},
	}
}

// Typographer applies a validated Config.
type Typographer struct {
	open, close string
	steps       []func(*pass, string) string
}

var (
	tagRe       = regexp.MustCompile(`<[^>]*>`)
	tagNameRe   = regexp.MustCompile(`^</?([a-zA-Z][a-zA-Z0-9:-]*)`)
	voidRe      = regexp.MustCompile(`<(br|nobr|img|video|audio)([^>]*[^/>]|)>`)
	dashRe      = regexp.MustCompile(` +(-|--|—) +`)
	doubleDash  = regexp.MustCompile(`(\S)--(\S)`)
	shortWordRe = regexp.MustCompile(`(^|[\s\x{00a0}(])(\p{L}{1,2}) `)
)

// verbatim elements keep their text untouched.
var verbatim = map[string]bool{"pre": true, "code": true, "script": true, "style": true}

// inline elements do not break a quotation; any other tag starts a new run.
var inline = map[string]bool{
	"a": true, "abbr": true, "b": true, "cite": true, "code": true, "em": true,
	"i": true, "kbd": true, "mark": true, "q": true, "s": true, "small": true,
	"span": true, "strong": true, "sub": true, "sup": true, "u": true,
}

// pass is the state of one Apply call. prev is the last rune of text seen,
// or a space after a block boundary.
type pass struct {
	prev rune
}

func plain(fn func(string) string) func(*pass, string) string {
	return func(_ *pass, s string) string { return fn(s) }
}

// New validates cfg. Unknown rule names and unparsable locales are errors.
func New(cfg Config) (*Typographer, error) {
	t := &Typographer{open: "“", close: "”"}
	if cfg.Locale != "" {
		tag, err := language.Parse(cfg.Locale)
		if err != nil {
			return nil, fmt.Errorf("parse locale %q: %w", cfg.Locale, err)
		}
		base, _ := tag.Base()
		switch base.String() {
		case "ru", "uk", "be", "fr":
			t.open, t.close = "«", "»"
		case "de", "cs", "pl":
			t.open, t.close = "„", "“"
		}
	}
	for _, r := range cfg.Rules {
		if !r.Enabled {
			continue
		}
		switch r.Name {
		case RuleQuotes:
			t.steps = append(t.steps, t.quotes)
		case RuleDash:
			t.steps = append(t.steps, plain(dash))
		case RuleEllipsis:
			t.steps = append(t.steps, plain(ellipsis))
		case RuleNbsp:
			t.steps = append(t.steps, plain(nbsp))
		default:
			return nil, fmt.Errorf("unknown typography rule %q", r.Name)
		}
	}
	return t, nil
}

// Apply runs the rules over the text between tags, skipping verbatim
// elements, then writes void elements in self-closed form.
func (t *Typographer) Apply(markup string) string {
	var sb strings.Builder
	st := &pass{prev: ' '}
	depth := 0
	last := 0
	for _, loc := range tagRe.FindAllStringIndex(markup, -1) {
		sb.WriteString(t.text(st, markup[last:loc[0]], depth > 0))
		tag := markup[loc[0]:loc[1]]
		m := tagNameRe.FindStringSubmatch(tag)
		if m == nil || !inline[strings.ToLower(m[1])] {
			st.prev = ' '
		}
		if m != nil && verbatim[strings.ToLower(m[1])] {
			if strings.HasPrefix(tag, "</") {
				if depth > 0 {
					depth--
				}
			} else if !strings.HasSuffix(tag, "/>") {
				depth++
			}
		}
		sb.WriteString(tag)
		last = loc[1]
	}
	sb.WriteString(t.text(st, markup[last:], depth > 0))
	return CloseVoid(sb.String())
}

func (t *Typographer) text(st *pass, s string, skip bool) string {
	if s == "" {
		return s
	}
	if !skip {
		for _, step := range t.steps {
			s = step(st, s)
		}
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	st.prev = r
	return s
}

// CloseVoid rewrites br, nobr, img, video and audio start tags as
// "<name attrs />".
func CloseVoid(markup string) string {
	return voidRe.ReplaceAllString(markup, "<$1 $2 />")
}

// Apply is a convenience wrapper around New and Typographer.Apply.
func Apply(markup string, cfg Config) (string, error) {
	t, err := New(cfg)
	if err != nil {
		return "", err
	}
	return t.Apply(markup), nil
}

func (t *Typographer) quotes(st *pass, s string) string {
	s = strings.ReplaceAll(s, "&#34;", `"`)
	s = strings.ReplaceAll(s, "&quot;", `"`)
	if !strings.Contains(s, `"`) {
		return s
	}
	var sb strings.Builder
	prev := st.prev
	for _, r := range s {
		if r == '"' {
			if unicode.IsSpace(prev) || prev == '(' || prev == '[' {
				sb.WriteString(t.open)
			} else {
				sb.WriteString(t.close)
			}
		} else {
			sb.WriteRune(r)
		}
		prev = r
	}
	return sb.String()
}

func dash(s string) string {
	s = dashRe.ReplaceAllString(s, "\u00a0— ")
	return doubleDash.ReplaceAllString(s, "$1—$2")
}

func ellipsis(s string) string {
	return strings.ReplaceAll(s, "...", "…")
}

func nbsp(s string) string {
	// Run twice so adjacent short words ("a to b") are all joined.
	for range 2 {
		s = shortWordRe.ReplaceAllString(s, "$1$2\u00a0")
	}
	return s
}
