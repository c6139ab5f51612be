package convert

import (
	"fmt"
	"strconv"
	"time"
)

// ParseTimestampTZ parses the vendor-specific DATETIMEOFFSET text format
// "YYYY-MM-DD HH:MM:SS[.fff...] ±HH:MM" (spec.md §4.2's other{-155}
// strategy) and returns the equivalent UTC broken-down timestamp.
func ParseTimestampTZ(s string) (Timestamp, error) {
	if len(s) < 19 {
		return Timestamp{}, fmt.Errorf("convert: malformed timestamp-with-offset %q", s)
	}
	if s[4] != '-' || s[7] != '-' || s[10] != ' ' || s[13] != ':' || s[16] != ':' {
		return Timestamp{}, fmt.Errorf("convert: malformed timestamp-with-offset %q", s)
	}

	year, err := strconv.Atoi(s[0:4])
	if err != nil {
		return Timestamp{}, fmt.Errorf("convert: malformed year in %q: %w", s, err)
	}
	month, err := strconv.Atoi(s[5:7])
	if err != nil {
		return Timestamp{}, fmt.Errorf("convert: malformed month in %q: %w", s, err)
	}
	day, err := strconv.Atoi(s[8:10])
	if err != nil {
		return Timestamp{}, fmt.Errorf("convert: malformed day in %q: %w", s, err)
	}

	rest := s[11:]
	secondsSinceMidnight, nanoseconds, offsetStr, err := splitTimeAndOffset(rest)
	if err != nil {
		return Timestamp{}, fmt.Errorf("convert: %w in %q", err, s)
	}

	offsetMinutes, err := parseUTCOffset(offsetStr)
	if err != nil {
		return Timestamp{}, fmt.Errorf("convert: malformed UTC offset in %q: %w", s, err)
	}

	hh := secondsSinceMidnight / 3600
	mm := (secondsSinceMidnight / 60) % 60
	ss := secondsSinceMidnight % 60

	local := time.Date(year, time.Month(month), day, hh, mm, ss, nanoseconds, time.FixedZone("", offsetMinutes*60))
	utc := local.UTC()

	return Timestamp{
		Year: utc.Year(), Month: utc.Month(), Day: utc.Day(),
		Hour: utc.Hour(), Minute: utc.Minute(), Second: utc.Second(),
		Nanosecond: utc.Nanosecond(),
	}, nil
}

// splitTimeAndOffset parses "HH:MM:SS[.fff...] ±HH:MM" into the
// seconds-since-midnight/nanoseconds pair (reusing ParseTimeOfDay's
// truncation rule) and the trailing offset string.
func splitTimeAndOffset(s string) (secondsSinceMidnight, nanoseconds int, offset string, err error) {
	spaceIdx := -1
	for i := 8; i < len(s); i++ {
		if s[i] == ' ' {
			spaceIdx = i
			break
		}
	}
	if spaceIdx < 0 {
		return 0, 0, "", fmt.Errorf("missing UTC offset separator")
	}

	timePart := s[:spaceIdx]
	offset = s[spaceIdx+1:]

	secondsSinceMidnight, nanoseconds, err = ParseTimeOfDay(timePart)
	if err != nil {
		return 0, 0, "", err
	}
	return secondsSinceMidnight, nanoseconds, offset, nil
}

func parseUTCOffset(s string) (int, error) {
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return 0, fmt.Errorf("expected ±HH:MM, got %q", s)
	}
	hh, err := strconv.Atoi(s[1:3])
	if err != nil {
		return 0, err
	}
	mm, err := strconv.Atoi(s[4:6])
	if err != nil {
		return 0, err
	}
	total := hh*60 + mm
	if s[0] == '-' {
		total = -total
	}
	return total, nil
}
