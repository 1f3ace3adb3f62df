package testsupport_test

import (
	"testing"

	"github.com/goliatone/go-posts/pkg/testsupport"
)

const sample = `<!DOCTYPE html>
<html><body>
<p id="notice">Saved</p>
<table>
  <thead><tr><th>Name</th></tr></thead>
  <tbody>
    <tr><td class="name primary"> Name </td><td><span>Name</span></td></tr>
    <tr><td class="name">Other</td></tr>
  </tbody>
</table>
</body></html>`

func TestSelect_ChildAndDescendant(t *testing.T) {
	if got := len(testsupport.Select(t, sample, "tr>td")); got != 3 {
		t.Fatalf("expected 3 tr>td, got %d", got)
	}
	if got := len(testsupport.Select(t, sample, "table td")); got != 3 {
		t.Fatalf("expected 3 table td, got %d", got)
	}
	if got := len(testsupport.Select(t, sample, "table > td")); got != 0 {
		t.Fatalf("td is never a direct child of table, got %d", got)
	}
	if got := len(testsupport.Select(t, sample, "tr > th")); got != 1 {
		t.Fatalf("expected one header cell, got %d", got)
	}
}

func TestSelect_ClassAndID(t *testing.T) {
	if got := len(testsupport.Select(t, sample, "td.name")); got != 2 {
		t.Fatalf("expected 2 td.name, got %d", got)
	}
	if got := len(testsupport.Select(t, sample, "td.name.primary")); got != 1 {
		t.Fatalf("expected 1 td.name.primary, got %d", got)
	}
	nodes := testsupport.Select(t, sample, "#notice")
	if len(nodes) != 1 || testsupport.TextContent(nodes[0]) != "Saved" {
		t.Fatalf("expected notice paragraph, got %v", nodes)
	}
}

func TestCountText_StripsWhitespace(t *testing.T) {
	testsupport.AssertSelect(t, sample, "tr>td", "Name", 2)
	testsupport.AssertSelect(t, sample, "tr>td", "Other", 1)
	testsupport.AssertSelect(t, sample, "tr>td", "Missing", 0)
}

func TestSelectNodes_InvalidSelectors(t *testing.T) {
	for _, selector := range []string{"", "> td", "tr >", "tr > > td", "td."} {
		if _, err := testsupport.SelectNodes(sample, selector); err == nil {
			t.Fatalf("expected error for selector %q", selector)
		}
	}
}

func TestMatch(t *testing.T) {
	if !testsupport.Match(t, sample, `Saved`) {
		t.Fatalf("expected match")
	}
	if testsupport.Match(t, sample, `^Saved$`) {
		t.Fatalf("unexpected anchored match")
	}
}
