package biscuit

import (
	"sort"
	"strings"
)

// Header renders cookies as a Cookie request-header value, joining
// name=value pairs with "; ". With sortByName the pairs are ordered
// alphabetically; with dedupeByName only the first occurrence of each name
// is kept (applied before sorting).
func Header(cookies []Cookie, sortByName bool, dedupeByName bool) string {
	if len(cookies) == 0 {
		return ""
	}

	list := cookies
	if dedupeByName {
		seen := make(map[string]struct{}, len(cookies))
		list = make([]Cookie, 0, len(cookies))
		for _, c := range cookies {
			if _, ok := seen[c.Name]; ok {
				continue
			}
			seen[c.Name] = struct{}{}
			list = append(list, c)
		}
	}

	pairs := make([]string, 0, len(list))
	for _, c := range list {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	if sortByName {
		sort.Strings(pairs)
	}
	return strings.Join(pairs, "; ")
}
