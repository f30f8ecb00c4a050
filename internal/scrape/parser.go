package scrape

import (
	"bytes"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Parser extracts candidate records from one external source. A
// malformed entry is skipped, not fatal; the skip count feeds run stats.
type Parser interface {
	Name() string
	Pages() []string
	Parse(body []byte, pageURL string) (candidates []Candidate, skipped int, err error)
}

// Registry maps source names to parsers, resolved once at startup.
type Registry struct {
	parsers map[string]Parser
	order   []string
}

func NewRegistry(parsers ...Parser) *Registry {
	r := &Registry{parsers: map[string]Parser{}}
	for _, p := range parsers {
		if _, dup := r.parsers[p.Name()]; dup {
			continue
		}
		r.parsers[p.Name()] = p
		r.order = append(r.order, p.Name())
	}
	sort.Strings(r.order)
	return r
}

// DefaultRegistry wires every supported Singapore source.
func DefaultRegistry() *Registry {
	return NewRegistry(
		&VisitSingaporeParser{},
		&EventbriteParser{},
		&MarinaBaySandsParser{},
		&SuntecCityParser{},
		&CommunityCentresParser{},
	)
}

func (r *Registry) Lookup(name string) (Parser, bool) {
	p, ok := r.parsers[name]
	return p, ok
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// --- HTML helpers shared by the source parsers ---

func parseHTML(body []byte) (*html.Node, error) {
	return html.Parse(bytes.NewReader(body))
}

func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// findAll returns matching element nodes, skipping descendants of a
// match so nested cards do not double-count.
func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	nodes := findAll(root, match)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func classContains(n *html.Node, substr string) bool {
	return strings.Contains(strings.ToLower(attrVal(n, "class")), substr)
}

func isTag(n *html.Node, names ...string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, name := range names {
		if n.Data == name {
			return true
		}
	}
	return false
}

// nodeText flattens the subtree's text with whitespace normalized.
func nodeText(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteString(" ")
		}
		return c.Type != html.ElementNode || (c.Data != "script" && c.Data != "style")
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// headingText pulls the first h1-h4 (or title-classed node) in a card.
func headingText(card *html.Node) string {
	if h := findFirst(card, func(n *html.Node) bool {
		return isTag(n, "h1", "h2", "h3", "h4")
	}); h != nil {
		return nodeText(h)
	}
	if t := findFirst(card, func(n *html.Node) bool {
		return classContains(n, "title") || classContains(n, "name")
	}); t != nil {
		return nodeText(t)
	}
	return ""
}

// classText returns the text of the first descendant whose class
// contains any of the given substrings.
func classText(card *html.Node, substrs ...string) string {
	n := findFirst(card, func(c *html.Node) bool {
		for _, s := range substrs {
			if classContains(c, s) {
				return true
			}
		}
		return false
	})
	if n == nil {
		return ""
	}
	return nodeText(n)
}

func firstLinkHref(card *html.Node) string {
	if a := findFirst(card, func(n *html.Node) bool { return isTag(n, "a") && attrVal(n, "href") != "" }); a != nil {
		return attrVal(a, "href")
	}
	return ""
}

func firstImageSrc(card *html.Node) string {
	if img := findFirst(card, func(n *html.Node) bool { return isTag(n, "img") && attrVal(n, "src") != "" }); img != nil {
		return attrVal(img, "src")
	}
	return ""
}

// absoluteURL joins relative hrefs against the source's base.
func absoluteURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(href, "/")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
