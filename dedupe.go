package biscuit

// dedupeCookies collapses cookies sharing the name|domain|path identity key.
// First seen wins, so source priority order decides ties.
func dedupeCookies(cookies []Cookie) []Cookie {
	if len(cookies) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(cookies))
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		key := c.Name + "\x00" + c.Domain + "\x00" + c.Path
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
