package datagrid

import "strings"

// matchCapability checks whether a held capability pattern matches a
// required capability. Capabilities are opaque strings; the only structure
// recognized is a trailing '*' wildcard, e.g. "edit_all_*" matches
// "edit_all_customers".
func matchCapability(pattern, required string) bool {
	if pattern == "*" || pattern == required {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(required, strings.TrimSuffix(pattern, "*"))
	}
	return false
}

// HasCapability reports whether any held capability matches required.
func HasCapability(held []string, required string) bool {
	for _, c := range held {
		if matchCapability(c, required) {
			return true
		}
	}
	return false
}
