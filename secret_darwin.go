//go:build darwin && !ios

package biscuit

import (
	"fmt"
	"strings"
	"time"
)

// chromiumValueDecryptor builds the macOS decryptor: the Safe Storage
// password lives in the login keychain and the derived key decrypts
// v10 AES-CBC values. A keychain failure yields no decryptor, only a
// warning; plaintext rows still come through.
func chromiumValueDecryptor(vendor chromiumVendor, _ []chromiumStore, opts Options) (valueDecryptFunc, []string) {
	password, err := keychainGenericPassword(opts.Timeout, vendor.safeStorageService, vendor.safeStorageAccount)
	if err != nil {
		return nil, []string{fmt.Sprintf("biscuit: macOS keychain read failed (%s): %v", vendor.safeStorageService, err)}
	}
	if password == "" {
		return nil, []string{fmt.Sprintf("biscuit: macOS keychain returned an empty %s password", vendor.safeStorageService)}
	}

	candidates := [][]byte{deriveCBCKey(password, cbcIterationsMacOS)}
	return func(encrypted []byte, stripHash bool) (string, bool) {
		return decryptCBC(encrypted, candidates, stripHash, true)
	}, nil
}

// keychainGenericPassword asks the `security` tool for a generic password.
// Output is trimmed; an interactive denial or timeout surfaces as an error.
func keychainGenericPassword(timeout time.Duration, service, account string) (string, error) {
	stdout, stderr, err := runSecretHelper(timeout, "security",
		"find-generic-password",
		"-w",
		"-a", account,
		"-s", service,
	)
	if err != nil {
		if s := strings.TrimSpace(stderr); s != "" {
			return "", fmt.Errorf("%w: %s", err, s)
		}
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}
