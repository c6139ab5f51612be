package convert

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// UTF16ToUTF8 decodes a buffer of UTF-16 code units (as an ODBC "wide"
// character column reports them) to UTF-8 bytes. It fails with a plain
// error on invalid surrogate pairs rather than silently substituting
// U+FFFD (wideTextStrategy wraps that error as odbcerr.ErrBadEncoding) —
// callers that want lossy behavior should use the narrow/sanitizing path
// instead.
func UTF16ToUTF8(units []uint16) ([]byte, error) {
	runes := make([]rune, 0, len(units))
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u < 0xD800 || u > 0xDFFF:
			runes = append(runes, rune(u))
		case u <= 0xDBFF: // high surrogate
			if i+1 >= len(units) {
				return nil, fmt.Errorf("convert: truncated surrogate pair at offset %d", i)
			}
			lo := units[i+1]
			if lo < 0xDC00 || lo > 0xDFFF {
				return nil, fmt.Errorf("convert: invalid low surrogate at offset %d", i+1)
			}
			runes = append(runes, utf16.DecodeRune(rune(u), rune(lo)))
			i++
		default: // stray low surrogate
			return nil, fmt.Errorf("convert: unpaired low surrogate at offset %d", i)
		}
	}

	out := make([]byte, 0, len(runes)*3)
	var buf [utf8.UTFMax]byte
	for _, r := range runes {
		n := utf8.EncodeRune(buf[:], r)
		out = append(out, buf[:n]...)
	}
	return out, nil
}

// UTF8ToUTF16 encodes UTF-8 bytes as a buffer of UTF-16 code units, the
// inverse of UTF16ToUTF8, used on the insert path when binding a wide
// character transport buffer.
func UTF8ToUTF16(s []byte) []uint16 {
	return utf16.Encode([]rune(string(s)))
}

// SanitizeUTF8 replaces invalid UTF-8 sequences in b with the Unicode
// replacement character, reporting whether any replacement occurred so the
// caller can emit a warning (spec.md §4.1, §7).
func SanitizeUTF8(b []byte) (sanitized []byte, replaced bool) {
	if utf8.Valid(b) {
		return b, false
	}

	out := make([]byte, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			out = append(out, string(utf8.RuneError)...)
			replaced = true
			b = b[1:]
			continue
		}
		out = append(out, b[:size]...)
		b = b[size:]
	}
	return out, true
}
