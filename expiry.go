package biscuit

import "time"

// The epochs the various stores count from.
const (
	// windowsToUnixMicros is the offset between 1601-01-01 (Chromium's
	// timestamp epoch) and 1970-01-01, in microseconds.
	windowsToUnixMicros = int64(11644473600000000)

	// macToUnixSeconds is the offset between 2001-01-01 (the Mac reference
	// epoch used by binarycookies) and 1970-01-01, in seconds.
	macToUnixSeconds = int64(978307200)
)

// expiryFromUnixSeconds normalizes a raw Unix-seconds expiry. Zero or
// negative means session cookie.
func expiryFromUnixSeconds(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

// expiryFromUnixMillis normalizes a Unix-milliseconds expiry.
func expiryFromUnixMillis(ms int64) *time.Time {
	if ms <= 0 {
		return nil
	}
	t := time.Unix(ms/1000, (ms%1000)*int64(time.Millisecond)).UTC()
	return &t
}

// expiryFromChromiumMicros normalizes Chromium's microseconds-since-1601
// expires_utc column.
func expiryFromChromiumMicros(micros int64) *time.Time {
	unixMicros := micros - windowsToUnixMicros
	if unixMicros <= 0 {
		return nil
	}
	t := time.Unix(0, unixMicros*int64(time.Microsecond)).UTC()
	return &t
}

// expiryFromMacSeconds normalizes a binarycookies float expiry measured in
// seconds since 2001-01-01 UTC.
func expiryFromMacSeconds(secsSince2001 float64) *time.Time {
	if secsSince2001 <= 0 {
		return nil
	}
	sec := int64(secsSince2001)
	nsec := int64((secsSince2001 - float64(sec)) * 1e9)
	t := time.Unix(macToUnixSeconds+sec, nsec).UTC()
	return &t
}
