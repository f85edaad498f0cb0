//go:build windows

package biscuit

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

// dpapiBlobHeader identifies a raw DPAPI blob
// (01000000D08C9DDF0115D1118C7A00C04FC297EB): cookie values from before the
// AES-GCM master-key scheme are protected directly with DPAPI.
var dpapiBlobHeader = [...]byte{
	1, 0, 0, 0, 208, 140, 157, 223, 1, 21, 209, 17, 140, 122, 0, 192, 79, 194, 151, 235,
}

// chromiumValueDecryptor builds the Windows decryptor: the AES-256-GCM
// master key is unwrapped from Local State via DPAPI. Legacy raw-DPAPI
// values are unprotected directly; v20 (app-bound) values need an elevated
// helper and are skipped.
func chromiumValueDecryptor(vendor chromiumVendor, stores []chromiumStore, _ Options) (valueDecryptFunc, []string) {
	userDataDir := ""
	for _, st := range stores {
		if st.userData != "" {
			userDataDir = st.userData
			break
		}
	}
	if userDataDir == "" {
		return nil, []string{fmt.Sprintf("biscuit: %s Local State path unavailable", vendor.label)}
	}

	key, err := windowsMasterKey(userDataDir)
	if err != nil {
		return nil, []string{fmt.Sprintf("biscuit: %s master key read failed: %v", vendor.label, err)}
	}

	return func(encrypted []byte, stripHash bool) (string, bool) {
		if len(encrypted) < 3 {
			return "", false
		}

		if bytes.HasPrefix(encrypted, dpapiBlobHeader[:]) {
			plain, err := dpapiUnprotect(encrypted)
			if err != nil {
				return "", false
			}
			if stripHash {
				plain = stripHashPrefix(plain)
			}
			return decodeCookieValue(plain)
		}

		if string(encrypted[:3]) == "v20" {
			return "", false
		}

		return decryptGCM(encrypted, key, stripHash)
	}, nil
}

// windowsMasterKey reads os_crypt.encrypted_key from Local State, strips
// the 5-byte "DPAPI" magic and unwraps the 32-byte AES key.
func windowsMasterKey(userDataDir string) ([]byte, error) {
	stateBytes, err := os.ReadFile(filepath.Join(userDataDir, "Local State"))
	if err != nil {
		return nil, err
	}

	var localState struct {
		OSCrypt struct {
			EncryptedKey string `json:"encrypted_key"`
		} `json:"os_crypt"`
	}
	if err := json.Unmarshal(stateBytes, &localState); err != nil {
		return nil, err
	}
	encB64 := strings.TrimSpace(localState.OSCrypt.EncryptedKey)
	if encB64 == "" {
		return nil, errors.New("local state missing os_crypt.encrypted_key")
	}
	enc, err := base64.StdEncoding.DecodeString(encB64)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(enc, []byte("DPAPI")) {
		return nil, errors.New("encrypted_key missing DPAPI prefix")
	}
	key, err := dpapiUnprotect(enc[len("DPAPI"):])
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("master key not 32 bytes (got %d)", len(key))
	}
	return key, nil
}

func dpapiUnprotect(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty dpapi input")
	}

	var outBlob dataBlob
	if err := cryptUnprotectData(newBlob(data), &outBlob); err != nil {
		return nil, err
	}
	defer func() {
		_, _ = windows.LocalFree(windows.Handle(unsafe.Pointer(outBlob.pbData))) //nolint:gosec // Windows API contract.
	}()
	return outBlob.bytes(), nil
}

type dataBlob struct {
	cbData uint32
	pbData *byte
}

func newBlob(d []byte) *dataBlob {
	if len(d) == 0 {
		return &dataBlob{}
	}
	return &dataBlob{pbData: &d[0], cbData: uint32(len(d))}
}

func (b *dataBlob) bytes() []byte {
	if b == nil || b.cbData == 0 || b.pbData == nil {
		return nil
	}
	out := make([]byte, b.cbData)
	copy(out, (*[1 << 30]byte)(unsafe.Pointer(b.pbData))[:b.cbData:b.cbData])
	return out
}

func cryptUnprotectData(in *dataBlob, out *dataBlob) error {
	// x/sys/windows wraps CryptUnprotectData awkwardly for raw blobs;
	// call the proc directly.
	dll := windows.NewLazySystemDLL("Crypt32.dll")
	proc := dll.NewProc("CryptUnprotectData")
	const cryptprotectUIForbidden = 0x1
	r, _, e := proc.Call(
		uintptr(unsafe.Pointer(in)),
		0,
		0,
		0,
		0,
		cryptprotectUIForbidden,
		uintptr(unsafe.Pointer(out)),
	)
	if r == 0 {
		return e
	}
	return nil
}
