package biscuit

import "context"

// cookieProvider is the capability a browser family implements: locate its
// stores, recover key material, and return cookies for the given origins.
// Providers never fail the call; every failure degrades to warnings.
type cookieProvider interface {
	read(ctx context.Context, profile string, origins []requestOrigin, opts Options) ([]Cookie, []string)
}

// providerFor is a var so tests can substitute counting fakes.
var providerFor = defaultProviderFor

func defaultProviderFor(b Browser) cookieProvider {
	switch b {
	case BrowserChrome, BrowserChromium, BrowserEdge, BrowserBrave, BrowserVivaldi, BrowserOpera:
		return chromiumProvider{vendor: chromiumVendorFor(b)}
	case BrowserFirefox:
		return firefoxProvider{}
	case BrowserSafari:
		return safariProvider{}
	default:
		return nil
	}
}
