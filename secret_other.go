//go:build !darwin && !linux && !windows

package biscuit

func chromiumValueDecryptor(_ chromiumVendor, _ []chromiumStore, _ Options) (valueDecryptFunc, []string) {
	return nil, []string{"biscuit: chromium cookie decryption unsupported on this OS"}
}
