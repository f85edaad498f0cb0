package biscuit

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"time"
)

// inlineEnvelope is the `{cookies:[...]}` payload shape. Browser-extension
// exports add version/generatedAt/source/browser/targetUrl/origins fields
// around the same array; those are ignored here.
type inlineEnvelope struct {
	Cookies []inlineCookie `json:"cookies"`
}

type inlineCookie struct {
	Name     string      `json:"name"`
	Value    string      `json:"value"`
	Domain   string      `json:"domain"`
	URL      string      `json:"url"`
	Path     string      `json:"path"`
	Secure   bool        `json:"secure"`
	HTTPOnly bool        `json:"httpOnly"`
	SameSite string      `json:"sameSite"`
	Expires  interface{} `json:"expires"`
}

func readInlineSource(src InlineSource) ([]Cookie, []string, error) {
	raw, err := inlineBytes(src)
	if err != nil {
		return nil, nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil, errors.New("biscuit: inline payload empty")
	}

	// Accept both `Cookie[]` and `{ cookies: Cookie[] }`.
	var envelope inlineEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Cookies) > 0 {
		return inlineToCookies(envelope.Cookies), nil, nil
	}

	var arr []inlineCookie
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, nil, errors.New("biscuit: inline payload is not a cookie array or {cookies:[...]} object")
	}
	return inlineToCookies(arr), nil, nil
}

func inlineBytes(src InlineSource) ([]byte, error) {
	switch {
	case len(src.JSON) > 0:
		return src.JSON, nil
	case src.Base64 != "":
		return base64.StdEncoding.DecodeString(src.Base64)
	case src.File != "":
		return os.ReadFile(src.File)
	default:
		return nil, errors.New("biscuit: empty inline source")
	}
}

func inlineToCookies(in []inlineCookie) []Cookie {
	if len(in) == 0 {
		return nil
	}
	out := make([]Cookie, 0, len(in))
	for _, c := range in {
		domain := c.Domain
		if domain == "" && c.URL != "" {
			if u, err := url.Parse(c.URL); err == nil {
				domain = u.Hostname()
			}
		}
		out = append(out, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: normalizeSameSite(c.SameSite),
			Expires:  parseInlineExpires(c.Expires),
			Source:   Source{Browser: BrowserInline},
		})
	}
	return out
}

func parseInlineExpires(v interface{}) *time.Time {
	switch vv := v.(type) {
	case float64:
		// JSON numbers arrive as float64. Anything past ~5000 CE in
		// seconds is really a millisecond timestamp.
		n := int64(vv)
		if n > 100_000_000_000 {
			return expiryFromUnixMillis(n)
		}
		return expiryFromUnixSeconds(n)
	case string:
		if vv == "" {
			return nil
		}
		if t, err := time.Parse(time.RFC3339, vv); err == nil {
			tt := t.UTC()
			return &tt
		}
		return nil
	default:
		return nil
	}
}

func normalizeSameSite(v string) SameSite {
	switch v {
	case "Strict", "strict":
		return SameSiteStrict
	case "Lax", "lax":
		return SameSiteLax
	case "None", "none", "NoRestriction", "no_restriction":
		return SameSiteNone
	default:
		return ""
	}
}
