package convert

import "time"

const unixEpochDay = 0 // 1970-01-01 is day 0 by definition.

// DateToDays converts a calendar date to signed days since the Unix epoch
// (1970-01-01), matching the Parquet DATE logical type's physical i32.
func DateToDays(year int, month time.Month, day int) int32 {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return int32(floorDiv(t.Unix(), 86400))
}

// DaysToDate converts signed days since the Unix epoch back to a calendar
// date. Accepts negative offsets (dates before 1970-01-01).
func DaysToDate(days int32) (year int, month time.Month, day int) {
	epoch := time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	t := epoch.AddDate(0, 0, int(days))
	y, m, d := t.Date()
	return y, m, d
}
