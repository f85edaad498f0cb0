package biscuit

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func createChromiumFixture(t *testing.T, dir string, legacySchema bool) string {
	t.Helper()
	dbPath := filepath.Join(dir, "Cookies")
	db := openTestSQLite(t, dbPath)

	if _, err := db.Exec(`CREATE TABLE meta(key TEXT PRIMARY KEY, value TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO meta(key,value) VALUES('version','30')`); err != nil {
		t.Fatal(err)
	}

	schema := `CREATE TABLE cookies(host_key TEXT, name TEXT, path TEXT, value TEXT, encrypted_value BLOB, expires_utc INTEGER, is_secure INTEGER, is_httponly INTEGER, samesite INTEGER)`
	if legacySchema {
		schema = `CREATE TABLE cookies(host_key TEXT, name TEXT, path TEXT, value TEXT, encrypted_value BLOB, expires_utc INTEGER, secure INTEGER, httponly INTEGER)`
	}
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return dbPath
}

func insertChromiumRow(t *testing.T, dbPath string, legacySchema bool, host, name, value string, encrypted []byte, expiresUTC int64) {
	t.Helper()
	db := openTestSQLite(t, dbPath)
	stmt := `INSERT INTO cookies(host_key,name,path,value,encrypted_value,expires_utc,is_secure,is_httponly,samesite) VALUES(?,?,?,?,?,?,1,1,1)`
	if legacySchema {
		stmt = `INSERT INTO cookies(host_key,name,path,value,encrypted_value,expires_utc,secure,httponly) VALUES(?,?,?,?,?,?,1,1)`
	}
	if _, err := db.Exec(stmt, host, name, "/", value, encrypted, expiresUTC); err != nil {
		t.Fatal(err)
	}
}

func TestChromiumReadRows_ModernAndLegacySchema(t *testing.T) {
	expires := chromiumExpiresForTest(time.Now().Add(24 * time.Hour))

	for _, legacy := range []bool{false, true} {
		dbPath := createChromiumFixture(t, t.TempDir(), legacy)
		insertChromiumRow(t, dbPath, legacy, ".example.com", "sid", "plain", nil, expires)

		db, err := openSnapshotDB(context.Background(), dbPath)
		if err != nil {
			t.Fatal(err)
		}
		rows, err := chromiumReadRows(context.Background(), db, []string{"app.example.com"})
		_ = db.Close()
		if err != nil {
			t.Fatalf("legacy=%v: %v", legacy, err)
		}
		if len(rows) != 1 {
			t.Fatalf("legacy=%v: want 1 row got %d", legacy, len(rows))
		}
		r := rows[0]
		if r.hostKey != ".example.com" || r.name != "sid" || !r.isSecure || !r.isHTTPOnly {
			t.Fatalf("legacy=%v: unexpected row %#v", legacy, r)
		}
		wantSameSite := SameSiteLax
		if legacy {
			wantSameSite = SameSite("")
		}
		if got := sameSiteFromInt(r.sameSite); got != wantSameSite {
			t.Fatalf("legacy=%v: samesite %q want %q", legacy, got, wantSameSite)
		}
	}
}

func TestChromiumRowToCookie_DecryptsAndSkips(t *testing.T) {
	key := deriveCBCKey("p", 1003)
	enc := encryptCBCForTest(t, "v11", key, []byte("cookie-value"))

	decrypt := func(encrypted []byte, stripHash bool) (string, bool) {
		return decryptCBC(encrypted, [][]byte{key}, stripHash, false)
	}

	vendor := chromiumVendorFor(BrowserChrome)
	st := chromiumStore{cookiesDB: "/x/Cookies", profile: "Default"}

	c, ok := chromiumRowToCookie(vendor, st, chromiumRow{
		hostKey:        ".example.com",
		name:           "sid",
		path:           "/",
		encryptedValue: enc,
		expiresUTC:     chromiumExpiresForTest(time.Now().Add(time.Hour)),
	}, false, decrypt)
	if !ok {
		t.Fatal("expected a cookie")
	}
	if c.Value != "cookie-value" {
		t.Fatalf("want %q got %q", "cookie-value", c.Value)
	}
	if c.Domain != "example.com" {
		t.Fatalf("leading dot should be trimmed, got %q", c.Domain)
	}

	// A row whose value cannot be recovered is dropped, not fatal.
	if _, ok := chromiumRowToCookie(vendor, st, chromiumRow{
		hostKey:        ".example.com",
		name:           "broken",
		encryptedValue: []byte("v11garbage-not-decryptable"),
	}, false, decrypt); ok {
		t.Fatal("undecryptable row should be skipped")
	}

	// The verbatim value column wins over decryption when non-empty.
	c, ok = chromiumRowToCookie(vendor, st, chromiumRow{
		hostKey: "example.com",
		name:    "v",
		value:   "verbatim",
	}, false, decrypt)
	if !ok || c.Value != "verbatim" {
		t.Fatalf("verbatim value lost: %#v", c)
	}
}

func TestExpandHostCandidates(t *testing.T) {
	got := expandHostCandidates("a.b.example.com")
	want := []string{"a.b.example.com", "b.example.com", "example.com"}
	if len(got) != len(want) {
		t.Fatalf("want %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v got %v", want, got)
		}
	}

	if got := expandHostCandidates("localhost"); len(got) != 1 || got[0] != "localhost" {
		t.Fatalf("single-label host: %v", got)
	}
}

func TestChromiumResolveStoreFromOverride_ExplicitDB(t *testing.T) {
	dbPath := createChromiumFixture(t, t.TempDir(), false)

	stores, warnings := chromiumResolveStoreFromOverride(BrowserChrome, dbPath)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(stores) != 1 || stores[0].cookiesDB != dbPath {
		t.Fatalf("unexpected stores: %#v", stores)
	}

	if _, warnings := chromiumResolveStoreFromOverride(BrowserChrome, filepath.Join(t.TempDir(), "missing")); len(warnings) == 0 {
		t.Fatal("expected a warning for a missing override")
	}
}

func TestGet_ChromiumExplicitDB_Linux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("password-override decryptor path is linux-only")
	}

	dbPath := createChromiumFixture(t, t.TempDir(), false)
	key := deriveCBCKey("secret", cbcIterationsLinux)
	enc := encryptCBCForTest(t, "v11", key, []byte("hello"))
	expires := chromiumExpiresForTest(time.Now().Add(24 * time.Hour))
	insertChromiumRow(t, dbPath, false, ".example.com", "sid", "", enc, expires)

	res, err := Get(context.Background(), Options{
		URL:                  "https://app.example.com/",
		Browsers:             []Browser{BrowserChrome},
		Profiles:             map[Browser]string{BrowserChrome: dbPath},
		SafeStoragePasswords: map[Browser]string{BrowserChrome: "secret"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Cookies) != 1 {
		t.Fatalf("want 1 cookie got %d (warnings=%v)", len(res.Cookies), res.Warnings)
	}
	if res.Cookies[0].Value != "hello" {
		t.Fatalf("want %q got %q", "hello", res.Cookies[0].Value)
	}
}

func TestGet_ChromiumExplicitDB_Darwin(t *testing.T) {
	if runtime.GOOS != "darwin" {
		t.Skip("keychain stub test is darwin-only")
	}

	// Shadow `security` on PATH so the real keychain is never touched.
	binDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(binDir, "security"), []byte("#!/bin/sh\necho pw\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))

	dbPath := createChromiumFixture(t, t.TempDir(), false)
	key := deriveCBCKey("pw", cbcIterationsMacOS)
	plain := append(make([]byte, 32), []byte("hello")...)
	enc := encryptCBCForTest(t, "v10", key, plain)
	expires := chromiumExpiresForTest(time.Now().Add(24 * time.Hour))
	insertChromiumRow(t, dbPath, false, ".example.com", "sid", "", enc, expires)
	insertChromiumRow(t, dbPath, false, ".example.com", "plain", "", []byte("plaintext"), expires)

	res, err := Get(context.Background(), Options{
		URL:      "https://app.example.com/",
		Browsers: []Browser{BrowserChrome},
		Profiles: map[Browser]string{BrowserChrome: dbPath},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]string{}
	for _, c := range res.Cookies {
		got[c.Name] = c.Value
	}
	if got["sid"] != "hello" {
		t.Fatalf("want sid=%q got %q (warnings=%v)", "hello", got["sid"], res.Warnings)
	}
	if got["plain"] != "plaintext" {
		t.Fatalf("want plain=%q got %q", "plaintext", got["plain"])
	}
}
