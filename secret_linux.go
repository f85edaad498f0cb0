//go:build linux && !android

package biscuit

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
)

type linuxKeyringBackend string

const (
	linuxKeyringGnome   linuxKeyringBackend = "gnome"
	linuxKeyringKWallet linuxKeyringBackend = "kwallet"
	linuxKeyringBasic   linuxKeyringBackend = "basic"
)

// chromiumValueDecryptor builds the Linux decryptor. Chromium on Linux has
// three generations of CBC keys, tried in this order: the hardcoded
// "peanuts" password (v10, no keyring), the empty password, and the real
// keyring-backed Safe Storage password (v11).
func chromiumValueDecryptor(vendor chromiumVendor, _ []chromiumStore, opts Options) (valueDecryptFunc, []string) {
	password, warnings := linuxSafeStoragePassword(vendor, opts)

	candidates := [][]byte{
		deriveCBCKey("peanuts", cbcIterationsLinux),
		deriveCBCKey("", cbcIterationsLinux),
	}
	if password != "" {
		candidates = append(candidates, deriveCBCKey(password, cbcIterationsLinux))
	}

	return func(encrypted []byte, stripHash bool) (string, bool) {
		return decryptCBC(encrypted, candidates, stripHash, false)
	}, warnings
}

func linuxSafeStoragePassword(vendor chromiumVendor, opts Options) (string, []string) {
	// Caller-supplied password bypasses all keyring probing; useful for
	// deterministic non-interactive runs.
	if pw := strings.TrimSpace(opts.SafeStoragePasswords[vendor.browser]); pw != "" {
		return pw, nil
	}

	backend := linuxKeyringBackend(strings.ToLower(strings.TrimSpace(opts.LinuxKeyring)))
	if backend == "" {
		backend = detectLinuxKeyringBackend()
	}

	switch backend {
	case linuxKeyringBasic:
		// Chromium's basic backend stores v10 cookies only; nothing to fetch.
		return "", nil
	case linuxKeyringGnome:
		if pw, err := keyring.Get(vendor.safeStorageService, vendor.safeStorageAccount); err == nil && strings.TrimSpace(pw) != "" {
			return strings.TrimSpace(pw), nil
		}
		if pw, err := secretToolLookup(opts.Timeout, vendor.safeStorageService, vendor.safeStorageAccount); err == nil {
			return pw, nil
		}
		return "", []string{"biscuit: failed to read the secret-service keyring; v11 cookies may be unavailable"}
	case linuxKeyringKWallet:
		if pw, err := kwalletLookup(opts.Timeout, vendor.safeStorageService, vendor.safeStorageAccount); err == nil {
			return pw, nil
		}
		return "", []string{"biscuit: failed to read KWallet via kwallet-query; v11 cookies may be unavailable"}
	default:
		return "", []string{fmt.Sprintf("biscuit: unknown Linux keyring backend %q", backend)}
	}
}

// detectLinuxKeyringBackend picks a backend from the desktop session:
// KDE means KWallet, anything else means the secret-service.
func detectLinuxKeyringBackend() linuxKeyringBackend {
	xdg := strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP"))
	for _, p := range strings.Split(xdg, ":") {
		if strings.TrimSpace(p) == "kde" {
			return linuxKeyringKWallet
		}
	}
	if os.Getenv("KDE_FULL_SESSION") != "" {
		return linuxKeyringKWallet
	}
	return linuxKeyringGnome
}

func secretToolLookup(timeout time.Duration, service, account string) (string, error) {
	stdout, _, err := runSecretHelper(timeout, "secret-tool",
		"lookup", "service", service, "account", account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}

// kwalletLookup reads the Safe Storage password out of KWallet. The wallet
// name is discovered over D-Bus from the session's kwalletd; discovery
// failure falls back to the stock "kdewallet".
func kwalletLookup(timeout time.Duration, service, account string) (string, error) {
	wallet := "kdewallet"
	serviceName, objectPath := kwalletServiceNameAndPath()
	stdout, _, err := runSecretHelper(timeout, "dbus-send",
		"--session",
		"--print-reply=literal",
		"--dest="+serviceName,
		objectPath,
		"org.kde.KWallet.networkWallet",
	)
	if err == nil {
		if w := strings.TrimSpace(strings.ReplaceAll(stdout, "\"", "")); w != "" {
			wallet = w
		}
	}

	folder := account + " Keys"
	stdout, _, err = runSecretHelper(timeout, "kwallet-query",
		"--read-password", service, "--folder", folder, wallet)
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(stdout)
	if strings.HasPrefix(strings.ToLower(out), "failed to read") {
		return "", fmt.Errorf("kwallet-query failed")
	}
	return out, nil
}

// kwalletServiceNameAndPath keys the kwalletd D-Bus address on the KDE
// session major version.
func kwalletServiceNameAndPath() (serviceName string, objectPath string) {
	switch strings.TrimSpace(os.Getenv("KDE_SESSION_VERSION")) {
	case "6":
		return "org.kde.kwalletd6", "/modules/kwalletd6"
	case "5":
		return "org.kde.kwalletd5", "/modules/kwalletd5"
	default:
		return "org.kde.kwalletd", "/modules/kwalletd"
	}
}
