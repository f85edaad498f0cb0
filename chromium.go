package biscuit

import (
	"context"
	"fmt"
	"strings"
)

type chromiumVendor struct {
	browser Browser

	// user-visible
	label string

	// "Safe Storage" secret identifier in the OS secret store.
	safeStorageService string
	safeStorageAccount string
}

func chromiumVendorFor(b Browser) chromiumVendor {
	//nolint:exhaustive // Only Chromium-family browsers reach this table.
	switch b {
	case BrowserChrome:
		return chromiumVendor{browser: b, label: "Chrome", safeStorageService: "Chrome Safe Storage", safeStorageAccount: "Chrome"}
	case BrowserChromium:
		return chromiumVendor{browser: b, label: "Chromium", safeStorageService: "Chromium Safe Storage", safeStorageAccount: "Chromium"}
	case BrowserEdge:
		return chromiumVendor{browser: b, label: "Microsoft Edge", safeStorageService: "Microsoft Edge Safe Storage", safeStorageAccount: "Microsoft Edge"}
	case BrowserBrave:
		return chromiumVendor{browser: b, label: "Brave", safeStorageService: "Brave Safe Storage", safeStorageAccount: "Brave"}
	case BrowserVivaldi:
		return chromiumVendor{browser: b, label: "Vivaldi", safeStorageService: "Vivaldi Safe Storage", safeStorageAccount: "Vivaldi"}
	case BrowserOpera:
		return chromiumVendor{browser: b, label: "Opera", safeStorageService: "Opera Safe Storage", safeStorageAccount: "Opera"}
	default:
		return chromiumVendor{browser: b, label: string(b), safeStorageService: fmt.Sprintf("%s Safe Storage", b), safeStorageAccount: string(b)}
	}
}

type chromiumProvider struct {
	vendor chromiumVendor
}

// valueDecryptFunc recovers one encrypted cookie value. stripHash reflects
// the store's meta schema version against the configured threshold.
type valueDecryptFunc func(encrypted []byte, stripHash bool) (string, bool)

func (p chromiumProvider) read(ctx context.Context, profile string, origins []requestOrigin, opts Options) ([]Cookie, []string) {
	stores, warnings := chromiumResolveStores(p.vendor.browser, profile)
	if len(stores) == 0 {
		return nil, append(warnings, fmt.Sprintf("biscuit: %s cookie store not found", p.vendor.label))
	}

	hosts := originsToHosts(origins)

	decrypt, secretWarnings := chromiumValueDecryptor(p.vendor, stores, opts)
	warnings = append(warnings, secretWarnings...)

	var out []Cookie
	for _, st := range stores {
		snapshot, cleanup, err := snapshotStore(st.cookiesDB)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("biscuit: %s: %v", p.vendor.label, err))
			continue
		}
		func() {
			defer cleanup()

			db, err := openSnapshotDB(ctx, snapshot)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("biscuit: failed to open %s cookies DB: %v", p.vendor.label, err))
				return
			}
			defer func() { _ = db.Close() }()

			stripHash := chromiumMetaVersion(ctx, db) >= opts.hashPrefixMetaVersion()

			rows, err := chromiumReadRows(ctx, db, hosts)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("biscuit: failed to read %s cookies: %v", p.vendor.label, err))
				return
			}

			for _, row := range rows {
				if c, ok := chromiumRowToCookie(p.vendor, st, row, stripHash, decrypt); ok {
					out = append(out, c)
				}
			}
		}()
	}

	return out, warnings
}

func chromiumRowToCookie(vendor chromiumVendor, st chromiumStore, row chromiumRow, stripHash bool, decrypt valueDecryptFunc) (Cookie, bool) {
	if row.name == "" || row.hostKey == "" {
		return Cookie{}, false
	}

	value := row.value
	if value == "" && len(row.encryptedValue) > 0 && decrypt != nil {
		if plain, ok := decrypt(row.encryptedValue, stripHash); ok {
			value = plain
		}
	}
	if value == "" {
		return Cookie{}, false
	}

	path := row.path
	if path == "" {
		path = "/"
	}

	return Cookie{
		Name:     row.name,
		Value:    value,
		Domain:   strings.TrimPrefix(row.hostKey, "."),
		Path:     path,
		Secure:   row.isSecure,
		HTTPOnly: row.isHTTPOnly,
		SameSite: sameSiteFromInt(row.sameSite),
		Expires:  expiryFromChromiumMicros(row.expiresUTC),
		Source: Source{
			Browser:    vendor.browser,
			Profile:    st.profile,
			StorePath:  st.cookiesDB,
			IsFallback: st.isFallback,
		},
	}, true
}

func sameSiteFromInt(v int64) SameSite {
	switch v {
	case 2:
		return SameSiteStrict
	case 1:
		return SameSiteLax
	case 0:
		return SameSiteNone
	default:
		return ""
	}
}
