package types

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Document is the raw result of fetching one product page. It is produced by
// a fetcher and consumed once per SKU check; nothing mutates it after that.
type Document struct {
	// StatusCode is the HTTP status code, or 0 when the transport layer
	// could not report one (browser fetches).
	StatusCode int

	// Body is the raw page text.
	Body []byte

	// FinalURL is the URL after any redirects.
	FinalURL string

	// FetchDuration is how long the fetch took.
	FetchDuration time.Duration

	// FetchedAt is when this document was received.
	FetchedAt time.Time

	// doc is a parsed goquery document (lazily loaded).
	doc *goquery.Document

	// lowerText caches the lowercased body for marker scans.
	lowerText string
}

// NewDocument creates a Document from fetched page content.
func NewDocument(statusCode int, body []byte, finalURL string, duration time.Duration) *Document {
	return &Document{
		StatusCode:    statusCode,
		Body:          body,
		FinalURL:      finalURL,
		FetchDuration: duration,
		FetchedAt:     time.Now(),
	}
}

// HTML returns a parsed goquery document, lazily initializing it.
func (d *Document) HTML() (*goquery.Document, error) {
	if d.doc != nil {
		return d.doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(d.Body))
	if err != nil {
		return nil, err
	}
	d.doc = doc
	return doc, nil
}

// Text returns the raw body as a string.
func (d *Document) Text() string {
	return string(d.Body)
}

// LowerText returns the lowercased body, cached across marker scans.
func (d *Document) LowerText() string {
	if d.lowerText == "" && len(d.Body) > 0 {
		d.lowerText = strings.ToLower(string(d.Body))
	}
	return d.lowerText
}

// Path returns the path component of the final URL, or "" if it cannot be
// parsed.
func (d *Document) Path() string {
	u, err := url.Parse(d.FinalURL)
	if err != nil {
		return ""
	}
	return u.Path
}

// IsSuccess returns true if the response status is 2xx.
func (d *Document) IsSuccess() bool {
	return d.StatusCode >= 200 && d.StatusCode < 300
}
