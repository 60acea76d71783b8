package typography

import (
	"strings"
	"testing"
)

func TestCloseVoid(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`<p>a<br>b</p>`, `<p>a<br  />b</p>`},
		{`<img src="a.png">`, `<img  src="a.png" />`},
		{`<img src="a.png"/>`, `<img src="a.png"/>`},
		{`<br/>`, `<br/>`},
	}
	for _, tt := range tests {
		if got := CloseVoid(tt.in); got != tt.want {
			t.Errorf("CloseVoid(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestApply_QuotesByLocale(t *testing.T) {
	tests := []struct {
		locale, want string
	}{
		{"en-US", `<p>He said “hi” (“yes”)</p>`},
		{"ru", `<p>He said «hi» («yes»)</p>`},
		{"de", `<p>He said „hi“ („yes“)</p>`},
		{"", `<p>He said “hi” (“yes”)</p>`},
	}
	for _, tt := range tests {
		cfg := Config{Locale: tt.locale, Rules: []Rule{{Name: RuleQuotes, Enabled: true}}}
		got, err := Apply(`<p>He said &#34;hi&#34; (&#34;yes&#34;)</p>`, cfg)
		if err != nil {
			t.Fatalf("locale %q: unexpected error: %v", tt.locale, err)
		}
		if got != tt.want {
			t.Errorf("locale %q: expected %q, got %q", tt.locale, tt.want, got)
		}
	}
}

func TestApply_SkipsTagsAndVerbatim(t *testing.T) {
	cfg := DefaultConfig("en")
	in := `<p class="a - b">wait... x - y</p><pre>a - b...</pre><code>"q"</code>`
	got, err := Apply(in, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, `class="a - b"`) {
		t.Errorf("expected attributes untouched, got %q", got)
	}
	if !strings.Contains(got, "wait… x\u00a0— y") {
		t.Errorf("expected dash and ellipsis substitutions, got %q", got)
	}
	if !strings.Contains(got, `<pre>a - b...</pre>`) || !strings.Contains(got, `<code>"q"</code>`) {
		t.Errorf("expected verbatim elements untouched, got %q", got)
	}
}

func TestApply_QuotesAcrossInlineTags(t *testing.T) {
	cfg := Config{Locale: "en", Rules: []Rule{{Name: RuleQuotes, Enabled: true}}}
	tests := []struct {
		in   string
		want string
	}{
		{`<p>"<em>word</em>" and "plain"</p>`, `<p>“<em>word</em>” and “plain”</p>`},
		{`<p>say "<a href="/x">link</a>"</p>`, `<p>say “<a href="/x">link</a>”</p>`},
		{`<p>"a"</p><p>"b"</p>`, `<p>“a”</p><p>“b”</p>`},
	}
	for _, tt := range tests {
		got, err := Apply(tt.in, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("Apply(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestApply_NbspJoinsShortWords(t *testing.T) {
	cfg := Config{Rules: []Rule{{Name: RuleNbsp, Enabled: true}}}
	got, err := Apply("go to a shop", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "go\u00a0to\u00a0a\u00a0shop"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestApply_DisabledRulesDoNothing(t *testing.T) {
	cfg := Config{Rules: []Rule{{Name: RuleDash, Enabled: false}}}
	got, err := Apply("a - b...", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a - b..." {
		t.Errorf("expected input unchanged, got %q", got)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(Config{Rules: []Rule{{Name: "kerning", Enabled: true}}}); err == nil {
		t.Error("expected error for unknown rule")
	}
	if _, err := New(Config{Locale: "not a locale!"}); err == nil {
		t.Error("expected error for invalid locale")
	}
}
