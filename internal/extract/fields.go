package extract

import (
	"strconv"
	"strings"

	"github.com/shelfwatch/shelfwatch/internal/types"
)

// Ordered fallback keys per logical field. First key whose value normalizes
// wins; the lists are priority policy, the resolution routines below are the
// shared mechanism.
var (
	currentPriceKeys = []string{"currentPrice", "price", "priceDisplay", "finalPrice"}
	regularPriceKeys = []string{"wasPrice", "regularPrice", "listPrice", "compareAtPrice"}
	availabilityKeys = []string{"availabilityStatus", "availabilityText", "fulfillmentLabel", "inventoryStatus"}
	stockFlagKeys    = []string{"inStock", "available", "isAvailable", "purchasable"}

	// nestedPriceKeys are probed when a price field holds a mapping instead
	// of a number ({"price": {"value": 19.99}} and friends).
	nestedPriceKeys = []string{"price", "value", "amount", "current", "minPrice"}

	// Availability phrase sets for deriving the stock flag from free text.
	// The out-of-stock set is checked first: "unavailable" contains
	// "available", and a negative signal must not read as in stock.
	outOfStockPhrases = []string{"out of stock", "unavailable", "sold out", "rupture"}
	inStockPhrases    = []string{"in stock", "available", "pickup"}
)

// NormalizeFacts resolves and normalizes the product fields from a matched
// node. The title is required: a node without one yields no facts, and the
// caller treats that as not-found. The SKU recorded in the facts prefers the
// node's own identifier, falling back to the requested one.
func NormalizeFacts(node map[string]any, requestedSKU string) (*types.ProductFacts, bool) {
	title := firstString(node, titleKeys)
	if title == "" {
		return nil, false
	}

	sku := scalarString(firstValue(node, identifierKeys))
	if sku == "" {
		sku = strings.TrimSpace(requestedSKU)
	}

	facts := &types.ProductFacts{
		SKU:          sku,
		Title:        title,
		PriceCurrent: resolvePrice(node, currentPriceKeys),
		PriceRegular: resolvePrice(node, regularPriceKeys),
	}

	facts.AvailabilityText = firstString(node, availabilityKeys)
	facts.InStock = resolveStockFlag(node, facts.AvailabilityText)

	return facts, true
}

// resolvePrice tries the fallback keys in order and returns the first value
// that normalizes to a number.
func resolvePrice(node map[string]any, keys []string) *float64 {
	for _, k := range keys {
		v, ok := node[k]
		if !ok {
			continue
		}
		if n, ok := normalizeNumber(v); ok {
			return &n
		}
	}
	return nil
}

// normalizeNumber coerces heterogeneous price representations to a float.
// Native numbers pass through. Strings are stripped of everything but
// digits, '.', ',' and '-', then commas are removed (treated as thousands
// separators; pages carry no locale signal, so comma-as-decimal locales are
// a known limitation) and the remainder parsed as a decimal. Mappings are
// probed recursively under the usual nested price keys.
func normalizeNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		var b strings.Builder
		for _, r := range t {
			if r >= '0' && r <= '9' || r == '.' || r == ',' || r == '-' {
				b.WriteRune(r)
			}
		}
		s := strings.ReplaceAll(b.String(), ",", "")
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case map[string]any:
		for _, k := range nestedPriceKeys {
			if vv, ok := t[k]; ok {
				if n, ok := normalizeNumber(vv); ok {
					return n, true
				}
			}
		}
	}
	return 0, false
}

// resolveStockFlag prefers an explicit boolean field; otherwise it derives
// the flag from the availability text. The result is a tri-state: nil means
// unknown, which is distinct from false.
func resolveStockFlag(node map[string]any, availability string) *bool {
	for _, k := range stockFlagKeys {
		if b, ok := node[k].(bool); ok {
			return &b
		}
	}
	if availability == "" {
		return nil
	}

	lower := strings.ToLower(availability)
	for _, phrase := range outOfStockPhrases {
		if strings.Contains(lower, phrase) {
			f := false
			return &f
		}
	}
	for _, phrase := range inStockPhrases {
		if strings.Contains(lower, phrase) {
			t := true
			return &t
		}
	}
	return nil
}
