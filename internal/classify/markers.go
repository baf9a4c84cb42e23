package classify

import (
	"bytes"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/shelfwatch/shelfwatch/internal/types"
)

// Page-content markers, matched case-insensitively against the body and the
// page title. Anti-automation markers decide blocked; not-found markers
// decide not_found. URL path fragments are matched against the resolved URL.
var (
	blockedMarkers = []string{
		"access denied",
		"automated access",
		"captcha",
		"verify you are human",
		"forbidden",
	}
	blockedPathFragments = []string{"/blocked"}

	// notFoundBodyMarkers are phrases distinctive enough to match anywhere
	// in the body. The bare "404" lives in the title list only: product
	// payloads routinely carry those digits in item ids and counts.
	notFoundBodyMarkers = []string{
		"page not found",
		"page could not be found",
		"page cannot be found",
	}
	notFoundTitleMarkers = append([]string{"404"}, notFoundBodyMarkers...)

	notFoundPathFragments = []string{"/errors/"}
)

// containsAny reports whether text contains any of the markers. text must
// already be lowercased.
func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// pageTitle extracts the <title> text. Block and error pages often carry the
// signal only there ("Robot or human?", "Page Not Found"), and probing the
// title via XPath avoids rescanning a multi-megabyte body.
func pageTitle(doc *types.Document) string {
	root, err := htmlquery.Parse(bytes.NewReader(doc.Body))
	if err != nil {
		return ""
	}
	node := htmlquery.FindOne(root, "//title")
	if node == nil {
		return ""
	}
	return strings.TrimSpace(innerText(node))
}

// innerText concatenates the text nodes under n.
func innerText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// pathContains reports whether the resolved URL path carries any fragment.
func pathContains(doc *types.Document, fragments []string) bool {
	path := strings.ToLower(doc.Path())
	for _, f := range fragments {
		if strings.Contains(path, f) {
			return true
		}
	}
	return false
}
