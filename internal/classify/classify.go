// Package classify turns transport signals, page-content heuristics and
// normalized product fields into one of four terminal statuses: blocked,
// not_found, out_of_stock, ok.
package classify

import (
	"errors"
	"strings"

	"github.com/shelfwatch/shelfwatch/internal/types"
)

// Classify evaluates the decision rules in fixed priority order; the first
// matching rule wins:
//
//  1. transport failure with no usable HTTP status      -> not_found
//  2. HTTP 403/429, anti-automation marker, /blocked    -> blocked
//  3. HTTP 404, not-found marker, /errors/ in the path  -> not_found
//  4. no embedded payload located                       -> not_found
//  5. no resolvable product facts                       -> not_found
//  6. in_stock == false                                 -> out_of_stock
//  7. price_current present                             -> ok
//  8. otherwise                                         -> not_found
//
// Block and not-found signals come before extraction results on purpose:
// extracting from a CAPTCHA interstitial would otherwise fall through to a
// misleading not_found instead of a distinguishable blocked.
func Classify(doc *types.Document, fetchErr error, located bool, facts *types.ProductFacts) types.Status {
	if fetchErr != nil {
		var fe *types.FetchError
		if errors.As(fetchErr, &fe) && blockedStatusCode(fe.StatusCode) {
			return types.StatusBlocked
		}
		return types.StatusNotFound
	}
	if doc == nil {
		return types.StatusNotFound
	}

	if status, decided := PageSignal(doc); decided {
		return status
	}

	if !located || facts == nil {
		return types.StatusNotFound
	}
	if facts.InStock != nil && !*facts.InStock {
		return types.StatusOutOfStock
	}
	if facts.PriceCurrent != nil {
		return types.StatusOK
	}
	return types.StatusNotFound
}

// PageSignal inspects transport status, page markers and the resolved URL
// for a blocked or not-found verdict. decided is false when the page carries
// neither signal and extraction should proceed.
func PageSignal(doc *types.Document) (status types.Status, decided bool) {
	text := doc.LowerText()
	title := strings.ToLower(pageTitle(doc))

	if blockedStatusCode(doc.StatusCode) ||
		containsAny(text, blockedMarkers) ||
		containsAny(title, blockedMarkers) ||
		pathContains(doc, blockedPathFragments) {
		return types.StatusBlocked, true
	}

	if doc.StatusCode == 404 ||
		containsAny(title, notFoundTitleMarkers) ||
		containsAny(text, notFoundBodyMarkers) ||
		pathContains(doc, notFoundPathFragments) {
		return types.StatusNotFound, true
	}

	return "", false
}

func blockedStatusCode(code int) bool {
	return code == 403 || code == 429
}
