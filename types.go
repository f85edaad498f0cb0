package biscuit

import "time"

// Browser identifies a cookie source.
type Browser string

const (
	// BrowserInline is the inline payload source.
	BrowserInline Browser = "inline"

	// BrowserChrome is Google Chrome.
	BrowserChrome Browser = "chrome"
	// BrowserChromium is Chromium.
	BrowserChromium Browser = "chromium"
	// BrowserEdge is Microsoft Edge.
	BrowserEdge Browser = "edge"
	// BrowserBrave is Brave Browser.
	BrowserBrave Browser = "brave"
	// BrowserVivaldi is Vivaldi.
	BrowserVivaldi Browser = "vivaldi"
	// BrowserOpera is Opera.
	BrowserOpera Browser = "opera"

	// BrowserFirefox is Mozilla Firefox.
	BrowserFirefox Browser = "firefox"

	// BrowserSafari is Apple Safari (macOS only).
	BrowserSafari Browser = "safari"
)

// Mode controls how results from multiple sources are combined.
type Mode string

const (
	// ModeMerge accumulates cookies from every requested source.
	ModeMerge Mode = "merge"
	// ModeFirst stops at the first source that yields at least one cookie.
	ModeFirst Mode = "first"
)

// SameSite is the cookie SameSite attribute.
type SameSite string

const (
	// SameSiteNone is SameSite=None.
	SameSiteNone SameSite = "None"
	// SameSiteLax is SameSite=Lax.
	SameSiteLax SameSite = "Lax"
	// SameSiteStrict is SameSite=Strict.
	SameSiteStrict SameSite = "Strict"
)

// Source records where a cookie came from.
type Source struct {
	Browser    Browser
	Profile    string
	StorePath  string
	IsFallback bool
}

// Cookie is one normalized cookie record. Domain carries no leading dot.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
	SameSite SameSite

	// Expires is nil for session cookies.
	Expires *time.Time
	Source  Source
}

// Result is returned by Get. Warnings are non-fatal diagnostics collected
// across all sources, in the order they occurred; they never contain cookie
// values or secret material.
type Result struct {
	Cookies  []Cookie
	Warnings []string
}

// InlineSource is one caller-supplied cookie payload. Exactly one field is
// expected to be set; if several are, JSON wins over Base64 over File.
type InlineSource struct {
	JSON   []byte
	Base64 string
	File   string
}

// defaultHashPrefixMetaVersion is the Chromium meta schema version at which
// decrypted values start carrying a 32-byte SHA-256 prefix of the host key.
// The threshold may drift with future Chromium releases, hence the override.
const defaultHashPrefixMetaVersion = 24

// Options configures cookie loading and filtering. The zero value is not
// usable: URL or Origins must be set, or AllowAllHosts enabled.
//
// Options is a plain value; nothing here reads the process environment.
// Use OptionsFromEnv to fold the supported environment variables in.
type Options struct {
	// URL is the target the cookies are intended for. Cookies are filtered
	// by its host, path and scheme.
	URL string

	// Origins are additional origins to match (e.g. auth redirect hosts).
	// Origins that fail to parse are dropped with a warning.
	Origins []string

	// Names restricts results to the listed cookie names (empty = all).
	Names []string

	// Browsers is the source priority order. Empty means DefaultBrowsers().
	Browsers []Browser

	// Mode defaults to ModeMerge.
	Mode Mode

	// Profiles overrides store selection per browser: a profile name, a
	// profile directory, or an explicit store-file path.
	Profiles map[Browser]string

	// Inline sources are tried in order before any browser store. The
	// first source yielding at least one matching cookie short-circuits
	// the whole call.
	Inline []InlineSource

	IncludeExpired bool
	AllowAllHosts  bool

	// Timeout bounds each external secret-store call (keychain, keyring).
	// Defaults to 3 seconds.
	Timeout time.Duration

	// HashPrefixMetaVersion is the minimum Chromium meta schema version at
	// which a 32-byte hash prefix is stripped from decrypted values.
	// Zero means the built-in default (24).
	HashPrefixMetaVersion int64

	// SafeStoragePasswords bypasses OS keyring lookup per browser
	// (Linux only). Useful for deterministic non-interactive runs.
	SafeStoragePasswords map[Browser]string

	// LinuxKeyring selects the Linux secret-store backend: "gnome",
	// "kwallet" or "basic". Empty means auto-detect from the session.
	LinuxKeyring string

	Debug bool
}

func (o Options) hashPrefixMetaVersion() int64 {
	if o.HashPrefixMetaVersion > 0 {
		return o.HashPrefixMetaVersion
	}
	return defaultHashPrefixMetaVersion
}

// DefaultBrowsers returns the built-in source preference order.
func DefaultBrowsers() []Browser {
	return []Browser{
		BrowserChrome,
		BrowserEdge,
		BrowserBrave,
		BrowserChromium,
		BrowserVivaldi,
		BrowserOpera,
		BrowserFirefox,
		BrowserSafari,
	}
}
