package biscuit

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// ErrNoOrigin is returned when neither URL nor Origins is set and
// AllowAllHosts is false.
var ErrNoOrigin = errors.New("biscuit: URL or Origins required (or AllowAllHosts)")

type requestOrigin struct {
	scheme string
	host   string
	path   string
}

// Get loads cookies from the configured sources and returns a filtered,
// de-duplicated result. Source failures never fail the call; the worst case
// is an empty cookie list with a non-empty Warnings slice.
func Get(ctx context.Context, opts Options) (Result, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	if opts.Mode == "" {
		opts.Mode = ModeMerge
	}

	origins, originWarnings, err := normalizeOrigins(opts.URL, opts.Origins, opts.AllowAllHosts)
	if err != nil {
		return Result{}, err
	}
	warnings := originWarnings

	allowlist := nameAllowlist(opts.Names)

	// Inline payloads bypass store locking and secret retrieval entirely,
	// so the first one that matches wins regardless of Mode.
	for _, src := range opts.Inline {
		cookies, inlineWarnings, err := readInlineSource(src)
		warnings = append(warnings, inlineWarnings...)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		cookies = filterCookies(origins, allowlist, opts.IncludeExpired, cookies)
		if len(cookies) > 0 {
			return Result{Cookies: dedupeCookies(cookies), Warnings: warnings}, nil
		}
	}

	browsers := opts.Browsers
	if len(browsers) == 0 {
		browsers = DefaultBrowsers()
	}
	browsers = slices.Compact(browsers)

	var all []Cookie
	for _, b := range browsers {
		p := providerFor(b)
		if p == nil {
			warnings = append(warnings, fmt.Sprintf("biscuit: unsupported browser %q", b))
			continue
		}
		profile := ""
		if opts.Profiles != nil {
			profile = opts.Profiles[b]
		}

		cookies, providerWarnings := p.read(ctx, profile, origins, opts)
		warnings = append(warnings, providerWarnings...)

		cookies = filterCookies(origins, allowlist, opts.IncludeExpired, cookies)
		all = append(all, cookies...)
		if opts.Mode == ModeFirst && len(all) > 0 {
			break
		}
	}

	return Result{Cookies: dedupeCookies(all), Warnings: warnings}, nil
}

func nameAllowlist(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	allow := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		allow[name] = struct{}{}
	}
	if len(allow) == 0 {
		return nil
	}
	return allow
}

// normalizeOrigins parses the target URL plus any extra origins. A bad
// target URL is a hard error; bad extra origins are dropped with a warning.
func normalizeOrigins(urlStr string, extra []string, allowAllHosts bool) ([]requestOrigin, []string, error) {
	var warnings []string
	origins := make([]requestOrigin, 0, 1+len(extra))

	if urlStr != "" {
		o, err := parseOrigin(urlStr)
		if err != nil {
			return nil, nil, fmt.Errorf("biscuit: invalid URL: %w", err)
		}
		origins = append(origins, o)
	}
	for _, raw := range extra {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		o, err := parseOrigin(raw)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("biscuit: skipping origin %q: %v", raw, err))
			continue
		}
		origins = append(origins, o)
	}

	if len(origins) == 0 && !allowAllHosts {
		return nil, nil, ErrNoOrigin
	}
	return dedupeOrigins(origins), warnings, nil
}

func parseOrigin(raw string) (requestOrigin, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return requestOrigin{}, err
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return requestOrigin{}, errors.New("missing scheme or host")
	}
	return requestOrigin{
		scheme: strings.ToLower(u.Scheme),
		host:   normalizeHost(u.Hostname()),
		path:   normalizePath(u.EscapedPath()),
	}, nil
}

func dedupeOrigins(origins []requestOrigin) []requestOrigin {
	seen := make(map[requestOrigin]struct{}, len(origins))
	out := origins[:0]
	for _, o := range origins {
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}

func originsToHosts(origins []requestOrigin) []string {
	if len(origins) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(origins))
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o.host == "" {
			continue
		}
		if _, ok := seen[o.host]; ok {
			continue
		}
		seen[o.host] = struct{}{}
		out = append(out, o.host)
	}
	return out
}
