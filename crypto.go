package biscuit

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1" //nolint:gosec // Chromium derives its cookie key with PBKDF2-SHA1 ("saltysalt").
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"
)

const (
	cbcKeySalt  = "saltysalt"
	cbcIV       = "                " // 16 spaces, fixed by Chromium
	cbcKeyLen   = 16
	gcmNonceLen = 12
	gcmTagLen   = 16

	// PBKDF2 iteration counts per platform scheme.
	cbcIterationsLinux = 1
	cbcIterationsMacOS = 1003

	hashPrefixLen = 32
)

// deriveCBCKey derives the 16-byte AES-CBC key Chromium uses for v10/v11
// values from a Safe Storage password.
func deriveCBCKey(password string, iterations int) []byte {
	return pbkdf2.Key([]byte(password), []byte(cbcKeySalt), iterations, cbcKeyLen, sha1.New)
}

// decryptCBC recovers the plaintext of a version-tagged AES-CBC value.
// Candidate keys are tried in order; the first one whose plaintext survives
// PKCS#7 unpadding and decodes as text wins. Values without a v## prefix are
// returned verbatim when allowPlaintext is set (legacy unencrypted rows).
func decryptCBC(encrypted []byte, candidates [][]byte, stripHash bool, allowPlaintext bool) (string, bool) {
	if len(encrypted) == 0 {
		return "", false
	}
	if !hasVersionPrefix(encrypted) {
		if !allowPlaintext {
			return "", false
		}
		return decodeCookieValue(encrypted)
	}

	ciphertext := encrypted[3:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", false
	}

	for _, key := range candidates {
		block, err := aes.NewCipher(key)
		if err != nil {
			continue
		}
		plain := make([]byte, len(ciphertext))
		cipher.NewCBCDecrypter(block, []byte(cbcIV)).CryptBlocks(plain, ciphertext)

		plain, err = removePKCS7Padding(plain)
		if err != nil {
			continue
		}
		if stripHash {
			plain = stripHashPrefix(plain)
		}
		if text, ok := decodeCookieValue(plain); ok {
			return text, true
		}
	}
	return "", false
}

// decryptGCM recovers the plaintext of a version-tagged AES-256-GCM value
// (v10 on Windows). Layout after the prefix: 12-byte nonce, ciphertext,
// 16-byte tag.
func decryptGCM(encrypted []byte, key []byte, stripHash bool) (string, bool) {
	if len(encrypted) < 3+gcmNonceLen+gcmTagLen {
		return "", false
	}
	if !hasVersionPrefix(encrypted) {
		return "", false
	}

	payload := encrypted[3:]
	nonce := payload[:gcmNonceLen]
	ciphertextAndTag := payload[gcmNonceLen:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", false
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", false
	}
	plain, err := aesgcm.Open(nil, nonce, ciphertextAndTag, nil)
	if err != nil {
		return "", false
	}
	if stripHash {
		plain = stripHashPrefix(plain)
	}
	return decodeCookieValue(plain)
}

// stripHashPrefix drops the 32-byte integrity hash newer Chromium schemes
// prepend to the plaintext.
func stripHashPrefix(plain []byte) []byte {
	if len(plain) >= hashPrefixLen {
		return plain[hashPrefixLen:]
	}
	return plain
}

// hasVersionPrefix reports whether b starts with a 'v' + two digits tag
// (v10, v11, v20, ...).
func hasVersionPrefix(b []byte) bool {
	if len(b) < 3 {
		return false
	}
	return b[0] == 'v' && isDigit(b[1]) && isDigit(b[2])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func removePKCS7Padding(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return b, nil
	}
	padLen := int(b[len(b)-1])
	if padLen <= 0 || padLen > aes.BlockSize || padLen > len(b) {
		return nil, fmt.Errorf("invalid padding length: %d", padLen)
	}
	for _, p := range b[len(b)-padLen:] {
		if int(p) != padLen {
			return nil, errors.New("invalid padding bytes")
		}
	}
	return b[:len(b)-padLen], nil
}

// decodeCookieValue turns decrypted bytes into text. Some Chromium builds
// pad values with low-byte noise, so leading control bytes are stripped
// before UTF-8 validation.
func decodeCookieValue(b []byte) (string, bool) {
	b = stripLeadingControlBytes(b)
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

func stripLeadingControlBytes(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] < 0x20 {
		i++
	}
	return bytes.Clone(b[i:])
}
