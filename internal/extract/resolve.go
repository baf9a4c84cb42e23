package extract

import (
	"strconv"
	"strings"
)

// Fallback key lists for locating a product node. Order is priority: the
// first present, non-empty key wins. Kept as data so the policy is testable
// separately from the resolution mechanism.
var (
	identifierKeys = []string{"sku", "id", "usItemId"}
	titleKeys      = []string{"name", "title", "productName"}
)

// ResolveProduct searches a decoded payload tree for the mapping node that
// describes the requested SKU.
//
// Every mapping node with a resolvable title is a candidate; nodes without a
// title cannot describe a product and are discarded. Candidates whose
// identifier equals the target SKU (both stringified and trimmed) win over
// title-only fallbacks: pages often embed extra product summaries such as
// recommendations, so the requested SKU must take priority, but a partial
// match still beats total failure when the identifier field is missing or
// renamed. Within each bucket the first node in walk order wins.
func ResolveProduct(tree any, targetSKU string) (map[string]any, bool) {
	want := strings.TrimSpace(targetSKU)

	var exact, fallback map[string]any

	Walk(tree, func(obj map[string]any) bool {
		if firstString(obj, titleKeys) == "" {
			return true
		}
		if id := scalarString(firstValue(obj, identifierKeys)); id != "" && id == want {
			exact = obj
			return false
		}
		if fallback == nil {
			fallback = obj
		}
		return true
	})

	if exact != nil {
		return exact, true
	}
	if fallback != nil {
		return fallback, true
	}
	return nil, false
}

// firstValue returns the first value among the fallback keys that renders a
// non-empty scalar. A present-but-empty value ("sku": "") falls through to
// the next key instead of masking it.
func firstValue(obj map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && scalarString(v) != "" {
			return v
		}
	}
	return nil
}

// firstString returns the first non-empty string among the fallback keys.
func firstString(obj map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// scalarString renders a scalar identifier as a trimmed string. JSON numbers
// decode as float64; integral values print without a fraction so numeric
// identifiers compare equal to their string form.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
