package biscuit

import (
	"os"
	"strings"
)

// Environment variables recognized by OptionsFromEnv. The core never reads
// the environment on its own; callers opt in by passing their Options
// through here once, at the edge.
const (
	envBrowsers     = "BISCUIT_BROWSERS"
	envLinuxKeyring = "BISCUIT_LINUX_KEYRING"
)

// OptionsFromEnv returns a copy of opts with the supported environment
// variables folded in. Explicit fields always win over the environment.
//
//	BISCUIT_BROWSERS                        comma-separated source order
//	BISCUIT_LINUX_KEYRING                   gnome | kwallet | basic
//	BISCUIT_<BROWSER>_SAFE_STORAGE_PASSWORD per-browser keyring bypass
func OptionsFromEnv(opts Options) Options {
	if len(opts.Browsers) == 0 {
		if raw := strings.TrimSpace(os.Getenv(envBrowsers)); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				part = strings.ToLower(strings.TrimSpace(part))
				if part == "" {
					continue
				}
				opts.Browsers = append(opts.Browsers, Browser(part))
			}
		}
	}

	if opts.LinuxKeyring == "" {
		opts.LinuxKeyring = strings.ToLower(strings.TrimSpace(os.Getenv(envLinuxKeyring)))
	}

	for _, b := range []Browser{
		BrowserChrome, BrowserChromium, BrowserEdge,
		BrowserBrave, BrowserVivaldi, BrowserOpera,
	} {
		if opts.SafeStoragePasswords[b] != "" {
			continue
		}
		pw := strings.TrimSpace(os.Getenv(envKeySafeStoragePassword(b)))
		if pw == "" {
			continue
		}
		if opts.SafeStoragePasswords == nil {
			opts.SafeStoragePasswords = make(map[Browser]string)
		}
		opts.SafeStoragePasswords[b] = pw
	}

	return opts
}

func envKeySafeStoragePassword(b Browser) string {
	return "BISCUIT_" + strings.ToUpper(string(b)) + "_SAFE_STORAGE_PASSWORD"
}
