package convert

import "fmt"

// ParseTimeOfDay parses "HH:MM:SS[.fff...]" into seconds-since-midnight and
// a separate nanoseconds remainder. Fractional digits beyond nanosecond
// precision (9 digits) are truncated; fewer than 9 are zero-padded on the
// right (spec.md §4.1). Truncation, not rounding — the first documented
// open question in spec.md §9 is resolved this way throughout the package.
func ParseTimeOfDay(s string) (secondsSinceMidnight int, nanoseconds int, err error) {
	if len(s) < 8 || s[2] != ':' || s[5] != ':' {
		return 0, 0, fmt.Errorf("convert: malformed time-of-day %q", s)
	}

	hh, err := digits2(s[0:2])
	if err != nil {
		return 0, 0, fmt.Errorf("convert: malformed hour in %q: %w", s, err)
	}
	mm, err := digits2(s[3:5])
	if err != nil {
		return 0, 0, fmt.Errorf("convert: malformed minute in %q: %w", s, err)
	}
	ss, err := digits2(s[6:8])
	if err != nil {
		return 0, 0, fmt.Errorf("convert: malformed second in %q: %w", s, err)
	}
	if hh > 23 || mm > 59 || ss > 60 {
		return 0, 0, fmt.Errorf("convert: time-of-day %q out of range", s)
	}

	secondsSinceMidnight = hh*3600 + mm*60 + ss

	rest := s[8:]
	if rest == "" {
		return secondsSinceMidnight, 0, nil
	}
	if rest[0] != '.' {
		return 0, 0, fmt.Errorf("convert: malformed fractional separator in %q", s)
	}
	frac := rest[1:]
	for _, c := range frac {
		if c < '0' || c > '9' {
			return 0, 0, fmt.Errorf("convert: malformed fractional digits in %q", s)
		}
	}

	// Truncate beyond 9 digits, zero-pad on the right if fewer.
	if len(frac) > 9 {
		frac = frac[:9]
	}
	for len(frac) < 9 {
		frac += "0"
	}
	ns := 0
	for _, c := range frac {
		ns = ns*10 + int(c-'0')
	}
	return secondsSinceMidnight, ns, nil
}

func digits2(s string) (int, error) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, fmt.Errorf("expected two digits, got %q", s)
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), nil
}
