//go:build darwin && !ios

package biscuit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type safariProvider struct{}

// read loads Safari's binarycookies jar. The sandboxed container store is
// the primary source; the legacy pre-container path is consulted only when
// the primary yields nothing.
func (safariProvider) read(_ context.Context, profile string, _ []requestOrigin, _ Options) ([]Cookie, []string) {
	if override := strings.TrimSpace(profile); override != "" {
		if !fileExists(override) {
			return nil, []string{fmt.Sprintf("biscuit: Safari Cookies.binarycookies not found at %q", override)}
		}
		return readBinaryCookiesFile(override, false)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, []string{fmt.Sprintf("biscuit: Safari: %v", err)}
	}
	primary := filepath.Join(home, "Library", "Containers", "com.apple.Safari", "Data", "Library", "Cookies", "Cookies.binarycookies")
	legacy := filepath.Join(home, "Library", "Cookies", "Cookies.binarycookies")

	var out []Cookie
	var warnings []string
	if fileExists(primary) {
		out, warnings = readBinaryCookiesFile(primary, false)
	}
	if len(out) == 0 && fileExists(legacy) {
		cookies, w := readBinaryCookiesFile(legacy, true)
		warnings = append(warnings, w...)
		out = append(out, cookies...)
	}
	if len(out) == 0 && len(warnings) == 0 {
		warnings = append(warnings, "biscuit: Safari cookie store not found")
	}
	return out, warnings
}

func readBinaryCookiesFile(path string, isFallback bool) ([]Cookie, []string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []string{fmt.Sprintf("biscuit: Safari read failed: %v", err)}
	}
	return parseBinaryCookies(data, Source{
		Browser:    BrowserSafari,
		Profile:    "Default",
		StorePath:  path,
		IsFallback: isFallback,
	})
}
