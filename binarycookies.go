package biscuit

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Safari's Cookies.binarycookies layout: a big-endian file header ("cook"
// magic + page count + per-page sizes), then pages. Inside a page everything
// is little-endian except the 4-byte page-start magic: a record count, a
// record offset table, and fixed-layout records whose string fields are
// NUL-terminated at record-relative offsets. Values are stored in the clear.
const (
	binaryCookiesMagic    = "cook"
	binaryCookiesPageMark = 0x00000100

	binaryCookieHeaderLen = 56

	binaryCookieFlagSecure   = 1 << 0
	binaryCookieFlagHTTPOnly = 1 << 2
)

// parseBinaryCookies parses a fully-read binarycookies buffer. Malformed
// pages and records are skipped, never fatal; only an unusable file header
// returns an error. Records without a domain are dropped silently, since a
// cookie with no host cannot be origin-matched.
func parseBinaryCookies(data []byte, src Source) ([]Cookie, []string) {
	if len(data) < 8 {
		return nil, []string{"biscuit: binarycookies file truncated"}
	}
	if string(data[:4]) != binaryCookiesMagic {
		return nil, []string{fmt.Sprintf("biscuit: binarycookies bad magic %q", data[:4])}
	}
	numPages := int(binary.BigEndian.Uint32(data[4:8]))

	sizeTableEnd := 8 + 4*numPages
	if numPages < 0 || sizeTableEnd > len(data) {
		return nil, []string{"biscuit: binarycookies page table truncated"}
	}

	var out []Cookie
	var warnings []string
	offset := sizeTableEnd
	for i := 0; i < numPages; i++ {
		pageSize := int(binary.BigEndian.Uint32(data[8+4*i : 12+4*i]))
		if pageSize < 0 || offset+pageSize > len(data) {
			warnings = append(warnings, fmt.Sprintf("biscuit: binarycookies page %d truncated", i))
			break
		}
		cookies, w := parseBinaryCookiesPage(data[offset:offset+pageSize], i, src)
		warnings = append(warnings, w...)
		out = append(out, cookies...)
		offset += pageSize
	}
	// The trailing 8-byte checksum is not verified.

	return out, warnings
}

func parseBinaryCookiesPage(page []byte, index int, src Source) ([]Cookie, []string) {
	if len(page) < 8 {
		return nil, []string{fmt.Sprintf("biscuit: binarycookies page %d too small", index)}
	}
	if binary.BigEndian.Uint32(page[:4]) != binaryCookiesPageMark {
		return nil, []string{fmt.Sprintf("biscuit: binarycookies page %d bad marker", index)}
	}
	numRecords := int(binary.LittleEndian.Uint32(page[4:8]))
	if numRecords == 0 {
		return nil, nil
	}

	offsetTableEnd := 8 + 4*numRecords
	if numRecords < 0 || offsetTableEnd > len(page) {
		return nil, []string{fmt.Sprintf("biscuit: binarycookies page %d offset table truncated", index)}
	}

	out := make([]Cookie, 0, numRecords)
	for i := 0; i < numRecords; i++ {
		recOff := int(binary.LittleEndian.Uint32(page[8+4*i : 12+4*i]))
		if c, ok := parseBinaryCookieRecord(page, recOff, src); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func parseBinaryCookieRecord(page []byte, recOff int, src Source) (Cookie, bool) {
	if recOff < 0 || recOff+binaryCookieHeaderLen > len(page) {
		return Cookie{}, false
	}
	rec := page[recOff:]

	size := int(binary.LittleEndian.Uint32(rec[0:4]))
	if size < binaryCookieHeaderLen || size > len(rec) {
		return Cookie{}, false
	}
	rec = rec[:size]

	flags := binary.LittleEndian.Uint32(rec[8:12])
	domainOff := int(binary.LittleEndian.Uint32(rec[16:20]))
	nameOff := int(binary.LittleEndian.Uint32(rec[20:24]))
	pathOff := int(binary.LittleEndian.Uint32(rec[24:28]))
	valueOff := int(binary.LittleEndian.Uint32(rec[28:32]))
	expiry := math.Float64frombits(binary.LittleEndian.Uint64(rec[40:48]))

	domain, ok := binaryCookieString(rec, domainOff)
	if !ok || domain == "" {
		// No host to match against; drop.
		return Cookie{}, false
	}
	name, ok := binaryCookieString(rec, nameOff)
	if !ok || name == "" {
		return Cookie{}, false
	}
	path, ok := binaryCookieString(rec, pathOff)
	if !ok {
		return Cookie{}, false
	}
	value, ok := binaryCookieString(rec, valueOff)
	if !ok {
		return Cookie{}, false
	}

	if path == "" {
		path = "/"
	}
	return Cookie{
		Name:     name,
		Value:    value,
		Domain:   normalizeHost(domain),
		Path:     path,
		Secure:   flags&binaryCookieFlagSecure != 0,
		HTTPOnly: flags&binaryCookieFlagHTTPOnly != 0,
		Expires:  expiryFromMacSeconds(expiry),
		Source:   src,
	}, true
}

// binaryCookieString reads a NUL-terminated string at a record-relative
// offset, rejecting offsets that leave the record.
func binaryCookieString(rec []byte, off int) (string, bool) {
	if off < binaryCookieHeaderLen || off >= len(rec) {
		return "", false
	}
	for i := off; i < len(rec); i++ {
		if rec[i] == 0 {
			return string(rec[off:i]), true
		}
	}
	return "", false
}
