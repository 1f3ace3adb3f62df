package testsupport

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// Select parses markup as an HTML document and returns the element nodes
// matching selector. Selectors are tag names (or *) with optional #id and
// .class parts, combined with ">" (child) or whitespace (descendant):
// "tr>td", "table tbody td.content", "#notice".
func Select(t *testing.T, markup, selector string) []*html.Node {
	t.Helper()

	nodes, err := SelectNodes(markup, selector)
	if err != nil {
		t.Fatalf("select %q: %v", selector, err)
	}
	return nodes
}

// SelectNodes is Select without testing.T.
func SelectNodes(markup, selector string) ([]*html.Node, error) {
	steps, err := parseSelector(selector)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("testsupport: parse markup: %w", err)
	}

	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && matchesChain(n, steps, len(steps)-1) {
			out = append(out, n)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return out, nil
}

// CountText returns how many nodes matching selector have text content equal
// to text once surrounding whitespace is stripped.
func CountText(t *testing.T, markup, selector, text string) int {
	t.Helper()

	count := 0
	for _, node := range Select(t, markup, selector) {
		if strings.TrimSpace(TextContent(node)) == text {
			count++
		}
	}
	return count
}

// AssertSelect fails the test unless exactly want nodes matching selector
// carry text.
func AssertSelect(t *testing.T, markup, selector, text string, want int) {
	t.Helper()

	if got := CountText(t, markup, selector, text); got != want {
		t.Fatalf("expected %d %q elements with text %q, got %d\n%s", want, selector, text, got, markup)
	}
}

// Match reports whether the rendered markup matches pattern.
func Match(t *testing.T, markup, pattern string) bool {
	t.Helper()

	re, err := regexp.Compile(pattern)
	if err != nil {
		t.Fatalf("compile pattern %q: %v", pattern, err)
	}
	return re.MatchString(markup)
}

// TextContent concatenates every text node below n.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

// Attr returns the value of an attribute on n.
func Attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

type selectorStep struct {
	tag     string
	id      string
	classes []string
	child   bool
}

func parseSelector(selector string) ([]selectorStep, error) {
	tokens := strings.Fields(strings.ReplaceAll(selector, ">", " > "))
	if len(tokens) == 0 {
		return nil, fmt.Errorf("testsupport: empty selector")
	}

	var steps []selectorStep
	child := false
	for _, token := range tokens {
		if token == ">" {
			if len(steps) == 0 || child {
				return nil, fmt.Errorf("testsupport: misplaced '>' in selector %q", selector)
			}
			child = true
			continue
		}
		step, err := parseCompound(token)
		if err != nil {
			return nil, err
		}
		step.child = child
		child = false
		steps = append(steps, step)
	}
	if child {
		return nil, fmt.Errorf("testsupport: selector %q ends with '>'", selector)
	}
	return steps, nil
}

func parseCompound(token string) (selectorStep, error) {
	var step selectorStep
	rest := token

	end := strings.IndexAny(rest, ".#")
	if end == -1 {
		end = len(rest)
	}
	step.tag = strings.ToLower(rest[:end])
	rest = rest[end:]

	for rest != "" {
		kind := rest[0]
		rest = rest[1:]
		end := strings.IndexAny(rest, ".#")
		if end == -1 {
			end = len(rest)
		}
		name := rest[:end]
		rest = rest[end:]
		if name == "" {
			return selectorStep{}, fmt.Errorf("testsupport: invalid selector part %q", token)
		}
		if kind == '#' {
			step.id = name
		} else {
			step.classes = append(step.classes, name)
		}
	}
	if step.tag == "" {
		step.tag = "*"
	}
	return step, nil
}

func matchesChain(n *html.Node, steps []selectorStep, index int) bool {
	if !matchesStep(n, steps[index]) {
		return false
	}
	if index == 0 {
		return true
	}
	if steps[index].child {
		parent := n.Parent
		return parent != nil && parent.Type == html.ElementNode && matchesChain(parent, steps, index-1)
	}
	for ancestor := n.Parent; ancestor != nil; ancestor = ancestor.Parent {
		if ancestor.Type == html.ElementNode && matchesChain(ancestor, steps, index-1) {
			return true
		}
	}
	return false
}

func matchesStep(n *html.Node, step selectorStep) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if step.tag != "*" && n.Data != step.tag {
		return false
	}
	if step.id != "" {
		if id, _ := Attr(n, "id"); id != step.id {
			return false
		}
	}
	if len(step.classes) > 0 {
		classAttr, _ := Attr(n, "class")
		have := strings.Fields(classAttr)
		for _, want := range step.classes {
			if !containsString(have, want) {
				return false
			}
		}
	}
	return true
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
