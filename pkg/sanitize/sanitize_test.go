package sanitize_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-posts/pkg/sanitize"
)

func TestContent_PlainTextUnchanged(t *testing.T) {
	if got := sanitize.Content("MyText"); got != "MyText" {
		t.Fatalf("expected plain text to pass through, got %q", got)
	}
	if got := sanitize.Content("   "); got != "" {
		t.Fatalf("expected blank content to be empty, got %q", got)
	}
}

func TestContent_LineBreaks(t *testing.T) {
	got := sanitize.Content("first\nsecond\r\nthird")
	if got != "first<br>second<br>third" && got != "first<br/>second<br/>third" {
		t.Fatalf("unexpected line break rendering %q", got)
	}
}

func TestContent_DropsUnsafeMarkup(t *testing.T) {
	got := sanitize.Content(`<strong>Bold</strong> <script>alert("x")</script><a href="javascript:alert(1)">bad</a> <a href="https://example.com">ok</a>`)

	if strings.Contains(got, "<script") || strings.Contains(got, "alert(") {
		t.Fatalf("script survived sanitising: %q", got)
	}
	if strings.Contains(got, "javascript:") {
		t.Fatalf("javascript URL survived sanitising: %q", got)
	}
	if !strings.Contains(got, "<strong>Bold</strong>") {
		t.Fatalf("expected inline markup to be kept: %q", got)
	}
	if !strings.Contains(got, `href="https://example.com"`) || !strings.Contains(got, `rel="nofollow"`) {
		t.Fatalf("expected safe link with nofollow: %q", got)
	}
}

func TestText_StripsMarkup(t *testing.T) {
	got := sanitize.Text(`<em>Hello</em> <img src="x" onerror="boom()">world`)
	if got != "Hello world" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestText_Unescapes(t *testing.T) {
	if got := sanitize.Text("Tom & <b>Jerry</b>"); got != "Tom & Jerry" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestEscape_KeepsValue(t *testing.T) {
	cases := map[string]string{
		"MyText":                  "MyText",
		"Compare a<b and b>c":     "Compare a&lt;b and b&gt;c",
		"Fish & Chips":            "Fish &amp; Chips",
		"<script>MyText</script>": "&lt;script&gt;MyText&lt;/script&gt;",
		"first\nsecond\r\nthird":  "first<br>second<br>third",
	}
	for raw, want := range cases {
		if got := sanitize.Escape(raw); got != want {
			t.Fatalf("Escape(%q) = %q, want %q", raw, got, want)
		}
	}
}
