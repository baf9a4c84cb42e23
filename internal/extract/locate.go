package extract

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/shelfwatch/shelfwatch/internal/types"
)

// Locator finds the embedded JSON payload inside a product page.
//
// Two sources are tried in order: a dedicated structured-data script element
// (a single well-formed JSON document, preferred) and the page's inline
// scripts, scanning for a legacy global-state assignment prefixed by a marker
// token. Decode failures on a candidate are swallowed and the scan moves on;
// only total absence of a decodable payload is reported to the caller.
type Locator struct {
	scriptID string
	marker   string
	logger   *slog.Logger
}

// NewLocator creates a payload locator. scriptID identifies the dedicated
// script element (without the leading #); marker is the inline assignment
// token to search for in script bodies.
func NewLocator(scriptID, marker string, logger *slog.Logger) *Locator {
	return &Locator{
		scriptID: scriptID,
		marker:   marker,
		logger:   logger.With("component", "locator"),
	}
}

// Locate returns the first decodable JSON tree found in the document, or
// false when no script yields valid JSON.
func (l *Locator) Locate(doc *types.Document) (any, bool) {
	html, err := doc.HTML()
	if err != nil {
		l.logger.Debug("html parse failed", "url", doc.FinalURL, "error", err)
		return nil, false
	}

	if tree, ok := l.fromScriptElement(html); ok {
		return tree, true
	}
	return l.fromInlineAssignment(html)
}

// fromScriptElement decodes the body of the dedicated structured-data script.
func (l *Locator) fromScriptElement(doc *goquery.Document) (any, bool) {
	var tree any
	found := false

	doc.Find("script#" + l.scriptID).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return true
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			l.logger.Debug("script element decode failed", "id", l.scriptID, "error", err)
			return true
		}
		tree = v
		found = true
		return false
	})

	return tree, found
}

// fromInlineAssignment scans every script body for the marker token and
// extracts the balanced object that follows it.
func (l *Locator) fromInlineAssignment(doc *goquery.Document) (any, bool) {
	var tree any
	found := false

	doc.Find("script").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := sel.Text()
		if !strings.Contains(text, l.marker) {
			return true
		}
		seg, ok := BracedSegment(text, l.marker)
		if !ok {
			return true
		}
		var v any
		if err := json.Unmarshal([]byte(seg), &v); err != nil {
			l.logger.Debug("inline payload decode failed", "marker", l.marker, "error", err)
			return true
		}
		tree = v
		found = true
		return false
	})

	return tree, found
}
