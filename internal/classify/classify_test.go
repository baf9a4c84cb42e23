package classify

import (
	"errors"
	"testing"

	"github.com/shelfwatch/shelfwatch/internal/types"
)

func doc(status int, body, finalURL string) *types.Document {
	return types.NewDocument(status, []byte(body), finalURL, 0)
}

const productPage = `<html><head><title>Widget - Buy Online</title></head>
<body><script id="__NEXT_DATA__">{"product":{"name":"Widget"}}</script></body></html>`

func facts(price *float64, inStock *bool) *types.ProductFacts {
	return &types.ProductFacts{SKU: "1", Title: "Widget", PriceCurrent: price, InStock: inStock}
}

func f64(v float64) *float64 { return &v }
func b(v bool) *bool         { return &v }

func TestClassifyTransportFailure(t *testing.T) {
	err := &types.FetchError{URL: "https://example.com/ip/1", Err: types.ErrTimeout}
	if got := Classify(nil, err, false, nil); got != types.StatusNotFound {
		t.Errorf("transport failure = %v, want not_found", got)
	}

	// Plain errors (not FetchError) also degrade to not_found.
	if got := Classify(nil, errors.New("boom"), false, nil); got != types.StatusNotFound {
		t.Errorf("plain error = %v, want not_found", got)
	}
}

func TestClassifyBlockedTransportStatus(t *testing.T) {
	for _, code := range []int{403, 429} {
		err := &types.FetchError{URL: "u", StatusCode: code, Err: errors.New("denied")}
		if got := Classify(nil, err, false, nil); got != types.StatusBlocked {
			t.Errorf("FetchError status %d = %v, want blocked", code, got)
		}
	}
}

func TestClassifyBlocked(t *testing.T) {
	tests := []struct {
		name string
		doc  *types.Document
	}{
		{"status 403", doc(403, productPage, "https://example.com/ip/1")},
		{"status 429", doc(429, productPage, "https://example.com/ip/1")},
		{"captcha marker", doc(200, `<html><body>please solve this CAPTCHA to continue</body></html>`, "https://example.com/ip/1")},
		{"access denied", doc(200, `<html><body>Access Denied</body></html>`, "https://example.com/ip/1")},
		{"verify human title", doc(200, `<html><head><title>Verify you are human</title></head><body></body></html>`, "https://example.com/ip/1")},
		{"blocked path", doc(200, `<html><body>redirected</body></html>`, "https://example.com/blocked?url=ip")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Blocked wins even with perfectly resolvable facts in hand.
			got := Classify(tt.doc, nil, true, facts(f64(19.99), b(true)))
			if got != types.StatusBlocked {
				t.Errorf("Classify = %v, want blocked", got)
			}
		})
	}
}

func TestClassifyNotFoundPage(t *testing.T) {
	tests := []struct {
		name string
		doc  *types.Document
	}{
		{"status 404", doc(404, `<html><body>nothing here</body></html>`, "https://example.com/ip/1")},
		{"404 in title", doc(200, `<html><head><title>404 - Oops</title></head><body><p>lost?</p></body></html>`, "https://example.com/ip/1")},
		{"page not found text", doc(200, `<html><body>Sorry, this page could not be found.</body></html>`, "https://example.com/ip/1")},
		{"errors path", doc(200, `<html><body>redirected</body></html>`, "https://example.com/errors/aws/oops")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.doc, nil, false, nil); got != types.StatusNotFound {
				t.Errorf("Classify = %v, want not_found", got)
			}
		})
	}
}

func TestClassifyExtractionOutcomes(t *testing.T) {
	page := doc(200, productPage, "https://example.com/ip/1")

	tests := []struct {
		name    string
		located bool
		facts   *types.ProductFacts
		want    types.Status
	}{
		{"no payload located", false, nil, types.StatusNotFound},
		{"payload but no facts", true, nil, types.StatusNotFound},
		{"out of stock beats price", true, facts(f64(19.99), b(false)), types.StatusOutOfStock},
		{"price with unknown stock", true, facts(f64(19.99), nil), types.StatusOK},
		{"price with in stock", true, facts(f64(19.99), b(true)), types.StatusOK},
		{"no price no stock signal", true, facts(nil, nil), types.StatusNotFound},
		{"in stock but no price", true, facts(nil, b(true)), types.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(page, nil, tt.located, tt.facts); got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPageSignalCleanPage(t *testing.T) {
	page := doc(200, productPage, "https://example.com/ip/1")
	if status, decided := PageSignal(page); decided {
		t.Errorf("clean page decided %v, want undecided", status)
	}
}

func TestPageSignalIgnores404InPayload(t *testing.T) {
	// Item ids and counts carry the digits 404 all the time; a healthy page
	// must not read as missing because of them.
	page := doc(200, `<html><head><title>Widget - Buy Online</title></head>
<body><script id="__NEXT_DATA__">{"product":{"usItemId":"40404","name":"Widget","reviewCount":404}}</script></body></html>`,
		"https://example.com/ip/40404")

	if status, decided := PageSignal(page); decided {
		t.Fatalf("PageSignal decided %v, want undecided", status)
	}
	if got := Classify(page, nil, true, facts(f64(19.99), b(true))); got != types.StatusOK {
		t.Errorf("Classify = %v, want ok", got)
	}
}

func TestPageSignalTitleProbe(t *testing.T) {
	// The body carries no marker; only the title does.
	page := doc(200, `<html><head><title>Robot check: verify you are human</title></head><body><p>loading…</p></body></html>`, "https://example.com/ip/1")
	status, decided := PageSignal(page)
	if !decided || status != types.StatusBlocked {
		t.Errorf("PageSignal = (%v, %v), want (blocked, true)", status, decided)
	}
}
