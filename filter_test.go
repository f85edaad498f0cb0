package biscuit

import (
	"testing"
	"time"
)

func TestHostMatchesCookieDomain(t *testing.T) {
	cases := []struct {
		host, domain string
		want         bool
	}{
		{"app.example.com", ".example.com", true},
		{"example.com", ".example.com", true},
		{"app.example.com", "example.com", true},
		{"example.com", "evil.com", false},
		{"notexample.com", "example.com", false},
		{"example.com", "app.example.com", false},
	}
	for _, c := range cases {
		if got := hostMatchesCookieDomain(c.host, c.domain); got != c.want {
			t.Errorf("hostMatchesCookieDomain(%q, %q) = %v, want %v", c.host, c.domain, got, c.want)
		}
	}
}

func TestCookieMatchesOrigin_SecureAndPath(t *testing.T) {
	o := requestOrigin{scheme: "https", host: "app.example.com", path: "/a/b"}
	c := Cookie{Name: "sid", Value: "x", Domain: "example.com", Path: "/a", Secure: true}

	if !cookieMatchesOrigin(c, o) {
		t.Fatal("expected match")
	}

	o.scheme = "http"
	if cookieMatchesOrigin(c, o) {
		t.Fatal("secure cookie must not match an http origin")
	}

	o.scheme = "https"
	c.Path = "/ab"
	if cookieMatchesOrigin(c, o) {
		t.Fatal("path /ab must not prefix-match /a/b")
	}
}

func TestFilterCookies_AllowlistAndExpiry(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	cookies := []Cookie{
		{Name: "a", Value: "1", Domain: "example.com", Path: "/", Expires: &expired},
		{Name: "b", Value: "2", Domain: "example.com", Path: "/"},
		{Name: "", Value: "3", Domain: "example.com", Path: "/"},
	}

	origins, _, err := normalizeOrigins("https://example.com/", nil, false)
	if err != nil {
		t.Fatal(err)
	}

	got := filterCookies(origins, map[string]struct{}{"a": {}, "b": {}}, false, cookies)
	if len(got) != 1 || got[0].Name != "b" {
		t.Fatalf("unexpected filtered set: %#v", got)
	}

	got = filterCookies(origins, nil, true, cookies)
	if len(got) != 2 {
		t.Fatalf("IncludeExpired should keep the expired cookie: %#v", got)
	}
}

func TestFilterCookies_NormalizesDomainAndPath(t *testing.T) {
	cookies := []Cookie{{Name: "a", Value: "1", Domain: ".Example.COM", Path: ""}}
	got := filterCookies(nil, nil, false, cookies)
	if len(got) != 1 {
		t.Fatal("expected one cookie")
	}
	if got[0].Domain != "example.com" {
		t.Fatalf("want normalized domain, got %q", got[0].Domain)
	}
	if got[0].Path != "/" {
		t.Fatalf("want default path /, got %q", got[0].Path)
	}
}

func TestDedupeCookies_FirstSeenWins(t *testing.T) {
	cookies := []Cookie{
		{Name: "a", Domain: "example.com", Path: "/", Value: "first", Source: Source{Browser: BrowserChrome}},
		{Name: "a", Domain: "example.com", Path: "/", Value: "second", Source: Source{Browser: BrowserFirefox}},
		{Name: "a", Domain: "example.com", Path: "/other", Value: "kept"},
	}
	out := dedupeCookies(cookies)
	if len(out) != 2 {
		t.Fatalf("want 2 got %d", len(out))
	}
	if out[0].Value != "first" || out[0].Source.Browser != BrowserChrome {
		t.Fatalf("first-seen should win: %#v", out[0])
	}
}
