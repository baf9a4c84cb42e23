package extract

import "sort"

// Walk traverses a decoded JSON tree and calls visit for every mapping node,
// parents before children (pre-order). Sequence nodes are not visited
// themselves; their elements are walked in index order. Mapping keys are
// walked in sorted order so candidate ordering is deterministic across runs.
//
// visit returns false to stop the traversal early; Walk reports whether the
// traversal ran to completion.
func Walk(v any, visit func(obj map[string]any) bool) bool {
	switch t := v.(type) {
	case map[string]any:
		if !visit(t) {
			return false
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !Walk(t[k], visit) {
				return false
			}
		}
	case []any:
		for _, vv := range t {
			if !Walk(vv, visit) {
				return false
			}
		}
	}
	return true
}
