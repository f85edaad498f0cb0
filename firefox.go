package biscuit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
)

type firefoxProvider struct{}

func (firefoxProvider) read(ctx context.Context, profile string, origins []requestOrigin, _ Options) ([]Cookie, []string) {
	dbs, warnings := firefoxResolveCookieDBs(profile)
	if len(dbs) == 0 {
		return nil, append(warnings, "biscuit: Firefox cookie store not found")
	}

	hosts := originsToHosts(origins)
	var out []Cookie
	for _, fdb := range dbs {
		snapshot, cleanup, err := snapshotStore(fdb.path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("biscuit: Firefox: %v", err))
			continue
		}
		func() {
			defer cleanup()

			db, err := openSnapshotDB(ctx, snapshot)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("biscuit: failed to open Firefox cookies DB: %v", err))
				return
			}
			defer func() { _ = db.Close() }()

			rows, err := firefoxReadRows(ctx, db, hosts)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("biscuit: failed to read Firefox cookies: %v", err))
				return
			}
			for _, r := range rows {
				if c, ok := firefoxRowToCookie(fdb, r); ok {
					out = append(out, c)
				}
			}
		}()
	}

	return out, warnings
}

type firefoxDB struct {
	path    string
	profile string
}

// firefoxResolveCookieDBs locates cookies.sqlite files: an explicit file or
// profile-dir override, else profiles.ini discovery across the OS roots.
func firefoxResolveCookieDBs(override string) ([]firefoxDB, []string) {
	override = strings.TrimSpace(override)
	if override != "" {
		if fi, err := os.Stat(override); err == nil {
			if fi.IsDir() {
				dbPath := filepath.Join(override, "cookies.sqlite")
				if fileExists(dbPath) {
					return []firefoxDB{{path: dbPath, profile: filepath.Base(override)}}, nil
				}
				return nil, []string{fmt.Sprintf("biscuit: Firefox cookies.sqlite not found in %q", override)}
			}
			return []firefoxDB{{path: override, profile: filepath.Base(filepath.Dir(override))}}, nil
		}
	}

	var out []firefoxDB
	for _, root := range firefoxRoots() {
		cfg, err := ini.Load(filepath.Join(root, "profiles.ini"))
		if err != nil {
			continue
		}

		for _, secName := range cfg.SectionStrings() {
			if !strings.HasPrefix(secName, "Profile") {
				continue
			}
			sec := cfg.Section(secName)
			name := sec.Key("Name").String()
			pathStr := filepath.FromSlash(sec.Key("Path").String())
			if pathStr == "" {
				continue
			}
			if sec.Key("IsRelative").String() == "1" {
				pathStr = filepath.Join(root, pathStr)
			}
			dbPath := filepath.Join(pathStr, "cookies.sqlite")
			if !fileExists(dbPath) {
				continue
			}

			prof := name
			if prof == "" {
				prof = filepath.Base(pathStr)
			}
			if override != "" && prof != override && filepath.Base(pathStr) != override {
				continue
			}
			out = append(out, firefoxDB{path: dbPath, profile: prof})
		}
	}

	if override != "" && len(out) == 0 {
		return nil, []string{fmt.Sprintf("biscuit: Firefox profile %q not found", override)}
	}
	return out, nil
}

type firefoxRow struct {
	host     string
	name     string
	value    string
	path     string
	expiry   int64
	isSecure bool
	httpOnly bool
	sameSite int64
}

func firefoxReadRows(ctx context.Context, db *sql.DB, hosts []string) ([]firefoxRow, error) {
	where, args := hostWhereClause("host", hosts)
	//nolint:gosec // `where` consists of placeholders; hosts travel via args.
	query := `SELECT host, name, value, path, expiry, isSecure, isHttpOnly, sameSite FROM moz_cookies WHERE (` + where + `) ORDER BY expiry DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []firefoxRow
	for rows.Next() {
		var r firefoxRow
		var expiry, secure, httpOnly, sameSite sql.NullInt64

		if err := rows.Scan(&r.host, &r.name, &r.value, &r.path, &expiry, &secure, &httpOnly, &sameSite); err != nil {
			return nil, err
		}
		if expiry.Valid {
			r.expiry = expiry.Int64
		}
		r.isSecure = secure.Valid && secure.Int64 == 1
		r.httpOnly = httpOnly.Valid && httpOnly.Int64 == 1
		if sameSite.Valid {
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

func firefoxRowToCookie(db firefoxDB, r firefoxRow) (Cookie, bool) {
	if r.name == "" || r.host == "" || r.value == "" {
		return Cookie{}, false
	}
	path := r.path
	if path == "" {
		path = "/"
	}

	return Cookie{
		Name:     r.name,
		Value:    r.value,
		Domain:   strings.TrimPrefix(r.host, "."),
		Path:     path,
		Secure:   r.isSecure,
		HTTPOnly: r.httpOnly,
		SameSite: sameSiteFromInt(r.sameSite),
		Expires:  expiryFromUnixSeconds(r.expiry),
		Source: Source{
			Browser:   BrowserFirefox,
			Profile:   db.profile,
			StorePath: db.path,
		},
	}, true
}
