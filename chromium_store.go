package biscuit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type chromiumStore struct {
	cookiesDB  string
	userData   string
	profile    string
	isDefault  bool
	isFallback bool
}

func chromiumResolveStores(b Browser, profileOverride string) ([]chromiumStore, []string) {
	if profileOverride != "" {
		return chromiumResolveStoreFromOverride(b, profileOverride)
	}

	var out []chromiumStore
	var warnings []string
	for _, root := range chromiumUserDataDirs(b) {
		st, w := chromiumStoresFromUserDataDir(b, root)
		warnings = append(warnings, w...)
		out = append(out, st...)
	}
	return out, warnings
}

// chromiumStoresFromUserDataDir enumerates the profiles listed in the Local
// State info_cache. A missing or unparseable Local State falls back to
// probing the conventional "Default" profile directory.
func chromiumStoresFromUserDataDir(b Browser, userDataDir string) ([]chromiumStore, []string) {
	localStateBytes, err := os.ReadFile(filepath.Join(userDataDir, "Local State"))
	if err != nil {
		return nil, nil
	}

	var localState struct {
		Profile struct {
			InfoCache map[string]struct {
				IsUsingDefaultName bool `json:"is_using_default_name"`
				Name               string
			} `json:"info_cache"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(localStateBytes, &localState); err != nil {
		stores := chromiumStoresForProfileDir(userDataDir, "Default", "Default", true)
		return stores, []string{fmt.Sprintf("biscuit: failed to parse Local State (%s): %v", userDataDir, err)}
	}

	var out []chromiumStore
	for profDir, prof := range localState.Profile.InfoCache {
		out = append(out, chromiumStoresForProfileDir(userDataDir, profDir, prof.Name, prof.IsUsingDefaultName)...)
	}
	return out, nil
}

func chromiumStoresForProfileDir(userDataDir, profDir, profName string, isDefault bool) []chromiumStore {
	var out []chromiumStore
	candidates := []string{
		filepath.Join(userDataDir, profDir, "Network", "Cookies"),
		filepath.Join(userDataDir, profDir, "Cookies"),
	}
	for _, p := range candidates {
		if fileExists(p) {
			out = append(out, chromiumStore{
				cookiesDB: p,
				userData:  userDataDir,
				profile:   profName,
				isDefault: isDefault,
			})
		}
	}
	return out
}

// chromiumResolveStoreFromOverride accepts an explicit Cookies DB path, a
// profile directory, or a profile name to look up across the known roots.
func chromiumResolveStoreFromOverride(b Browser, override string) ([]chromiumStore, []string) {
	override = strings.TrimSpace(override)
	if override == "" {
		return nil, nil
	}

	if fi, err := os.Stat(override); err == nil {
		if fi.IsDir() {
			return chromiumStoreFromProfileDir(override), nil
		}
		return chromiumStoreFromDBPath(b, override)
	}

	var out []chromiumStore
	for _, root := range chromiumUserDataDirs(b) {
		out = append(out, chromiumStoresForProfileDir(root, override, override, false)...)
	}
	if len(out) == 0 {
		return nil, []string{fmt.Sprintf("biscuit: %s profile %q not found", b, override)}
	}
	return out, nil
}

func chromiumStoreFromProfileDir(profileDir string) []chromiumStore {
	candidates := []string{
		filepath.Join(profileDir, "Network", "Cookies"),
		filepath.Join(profileDir, "Cookies"),
	}
	for _, p := range candidates {
		if fileExists(p) {
			return []chromiumStore{{
				cookiesDB: p,
				userData:  filepath.Dir(profileDir),
				profile:   filepath.Base(profileDir),
			}}
		}
	}
	return nil
}

func chromiumStoreFromDBPath(b Browser, dbPath string) ([]chromiumStore, []string) {
	if !fileExists(dbPath) {
		return nil, []string{fmt.Sprintf("biscuit: %s cookies DB not found at %q", b, dbPath)}
	}

	dir := filepath.Dir(dbPath)
	if filepath.Base(dir) == "Network" {
		dir = filepath.Dir(dir)
	}
	return []chromiumStore{{
		cookiesDB: dbPath,
		userData:  filepath.Dir(dir),
		profile:   filepath.Base(dir),
	}}, nil
}

type chromiumRow struct {
	hostKey        string
	name           string
	path           string
	value          string
	encryptedValue []byte
	expiresUTC     int64
	isSecure       bool
	isHTTPOnly     bool
	sameSite       int64
}

// chromiumMetaVersion reads the store's meta schema version; 0 when absent.
func chromiumMetaVersion(ctx context.Context, db *sql.DB) int64 {
	if db == nil {
		return 0
	}
	var value string
	if err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'version'`).Scan(&value); err != nil {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// chromiumReadRows queries cookies for the requested hosts. Very old stores
// named the flag columns `secure`/`httponly` and lack `samesite`; on a
// missing-column error the legacy query is tried before giving up.
func chromiumReadRows(ctx context.Context, db *sql.DB, hosts []string) ([]chromiumRow, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}

	where, args := hostWhereClause("host_key", hosts)

	rows, err := chromiumQueryRows(ctx, db,
		`SELECT host_key, name, path, value, encrypted_value, expires_utc, is_secure, is_httponly, samesite`+
			` FROM cookies WHERE (`+where+`) ORDER BY expires_utc DESC`, args, true)
	if err == nil || !isMissingColumnErr(err) {
		return rows, err
	}

	return chromiumQueryRows(ctx, db,
		`SELECT host_key, name, path, value, encrypted_value, expires_utc, secure, httponly`+
			` FROM cookies WHERE (`+where+`) ORDER BY expires_utc DESC`, args, false)
}

func chromiumQueryRows(ctx context.Context, db *sql.DB, query string, args []any, hasSameSite bool) ([]chromiumRow, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []chromiumRow
	for rows.Next() {
		var r chromiumRow
		var encrypted []byte
		var expires, secure, httpOnly, sameSite sql.NullInt64

		dest := []any{&r.hostKey, &r.name, &r.path, &r.value, &encrypted, &expires, &secure, &httpOnly}
		if hasSameSite {
			dest = append(dest, &sameSite)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		r.encryptedValue = encrypted
		if expires.Valid {
			r.expiresUTC = expires.Int64
		}
		r.isSecure = secure.Valid && secure.Int64 == 1
		r.isHTTPOnly = httpOnly.Valid && httpOnly.Int64 == 1
		if hasSameSite && sameSite.Valid {
			r.sameSite = sameSite.Int64
		} else {
			r.sameSite = -1
		}

		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func isMissingColumnErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such column")
}

// hostWhereClause builds the host-matching predicate: exact host, the
// dot-prefixed form, and suffix wildcards for each parent domain, so a
// cookie set for .example.com is found for app.example.com.
func hostWhereClause(column string, hosts []string) (string, []any) {
	if len(hosts) == 0 {
		return "1=1", nil
	}

	var clauses []string
	var args []any
	for _, host := range hosts {
		host = normalizeHost(host)
		if host == "" {
			continue
		}
		for _, candidate := range expandHostCandidates(host) {
			clauses = append(clauses, column+" = ?", column+" = ?", column+" LIKE ?")
			args = append(args, candidate, "."+candidate, "%."+candidate)
		}
	}
	if len(clauses) == 0 {
		return "1=0", nil
	}
	return strings.Join(clauses, " OR "), args
}

// expandHostCandidates lists host plus its parent domains down to the
// registrable-ish level (never the bare TLD).
func expandHostCandidates(host string) []string {
	parts := strings.Split(host, ".")
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) <= 1 {
		return []string{host}
	}

	seen := make(map[string]struct{}, len(cleaned))
	var out []string
	add := func(h string) {
		if h == "" {
			return
		}
		if _, ok := seen[h]; ok {
			return
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}

	add(host)
	for i := 1; i <= len(cleaned)-2; i++ {
		add(strings.Join(cleaned[i:], "."))
	}
	return out
}
