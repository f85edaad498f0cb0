package biscuit

import (
	"crypto/aes"
	"crypto/cipher"
	"database/sql"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func openTestSQLite(t *testing.T, path string) *sql.DB {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?mode=rwc")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func pkcs7PadForTest(t *testing.T, b []byte) []byte {
	t.Helper()
	padLen := aes.BlockSize - (len(b) % aes.BlockSize)
	if padLen == 0 {
		padLen = aes.BlockSize
	}
	out := make([]byte, 0, len(b)+padLen)
	out = append(out, b...)
	for i := 0; i < padLen; i++ {
		out = append(out, byte(padLen))
	}
	return out
}

func encryptCBCForTest(t *testing.T, prefix string, key []byte, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	padded := pkcs7PadForTest(t, plaintext)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, []byte(cbcIV)).CryptBlocks(ciphertext, padded)
	return append([]byte(prefix), ciphertext...)
}

func encryptGCMForTest(t *testing.T, prefix string, key, nonce, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		t.Fatal(err)
	}
	ciphertextAndTag := aesgcm.Seal(nil, nonce, plaintext, nil)
	out := make([]byte, 0, len(prefix)+len(nonce)+len(ciphertextAndTag))
	out = append(out, []byte(prefix)...)
	out = append(out, nonce...)
	out = append(out, ciphertextAndTag...)
	return out
}

// buildBinaryCookieRecord lays out one binarycookies record. fieldShift
// nudges the domain offset for out-of-bounds tests.
func buildBinaryCookieRecord(t *testing.T, domain, name, path, value string, flags uint32, expires time.Time, fieldShift int) []byte {
	t.Helper()

	domainB := append([]byte(domain), 0)
	nameB := append([]byte(name), 0)
	pathB := append([]byte(path), 0)
	valueB := append([]byte(value), 0)

	domainOff := uint32(binaryCookieHeaderLen)
	nameOff := domainOff + uint32(len(domainB))
	pathOff := nameOff + uint32(len(nameB))
	valueOff := pathOff + uint32(len(pathB))
	size := valueOff + uint32(len(valueB))

	expiry := float64(expires.Unix() - macToUnixSeconds)

	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint32(buf, size)
	buf = binary.LittleEndian.AppendUint32(buf, 0) // unknown
	buf = binary.LittleEndian.AppendUint32(buf, flags)
	buf = binary.LittleEndian.AppendUint32(buf, 0) // unknown
	buf = binary.LittleEndian.AppendUint32(buf, domainOff+uint32(fieldShift)) //nolint:gosec // test fixture
	buf = binary.LittleEndian.AppendUint32(buf, nameOff)
	buf = binary.LittleEndian.AppendUint32(buf, pathOff)
	buf = binary.LittleEndian.AppendUint32(buf, valueOff)
	buf = append(buf, 0, 0, 0, 0, 0, 0, 0, 0) // end marker
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(expiry))
	buf = binary.LittleEndian.AppendUint64(buf, 0) // creation

	buf = append(buf, domainB...)
	buf = append(buf, nameB...)
	buf = append(buf, pathB...)
	buf = append(buf, valueB...)
	return buf
}

func buildBinaryCookiePage(t *testing.T, records ...[]byte) []byte {
	t.Helper()

	headerLen := 8 + 4*len(records)
	page := make([]byte, 0, headerLen)
	page = append(page, 0x00, 0x00, 0x01, 0x00)
	page = binary.LittleEndian.AppendUint32(page, uint32(len(records)))

	off := uint32(headerLen)
	for _, rec := range records {
		page = binary.LittleEndian.AppendUint32(page, off)
		off += uint32(len(rec))
	}
	for _, rec := range records {
		page = append(page, rec...)
	}
	return page
}

func buildBinaryCookieFile(t *testing.T, pages ...[]byte) []byte {
	t.Helper()

	file := []byte(binaryCookiesMagic)
	file = binary.BigEndian.AppendUint32(file, uint32(len(pages)))
	for _, p := range pages {
		file = binary.BigEndian.AppendUint32(file, uint32(len(p)))
	}
	for _, p := range pages {
		file = append(file, p...)
	}
	file = append(file, 0, 0, 0, 0, 0, 0, 0, 0) // checksum, unverified
	return file
}

func chromiumExpiresForTest(t time.Time) int64 {
	return windowsToUnixMicros + t.UnixNano()/int64(time.Microsecond)
}
