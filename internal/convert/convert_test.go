package convert

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegerToDecimalTextRoundTrip(t *testing.T) {
	cases := []struct {
		n                  int64
		precision, scale   int
		want               string
	}{
		{123, 3, 2, "+1.23"},
		{123, 5, 2, "+001.23"},
		{-123, 5, 2, "-001.23"},
		{5, 3, 0, "+005"},
		{0, 1, 0, "+0"},
	}
	for _, c := range cases {
		got := IntegerToDecimalText(c.n, c.precision, c.scale)
		assert.Equal(t, c.want, string(got))
		assert.Len(t, got, DecimalTextLen(c.precision, c.scale))

		back, err := DecimalTextToInteger(got)
		require.NoError(t, err)
		assert.Equal(t, c.n, back)
	}
}

func TestDateRoundTrip(t *testing.T) {
	cases := []struct {
		y    int
		m    time.Month
		d    int
		days int32
	}{
		{1970, time.January, 1, 0},
		{1971, time.January, 1, 365},
		{2021, time.March, 9, 18695},
		{1969, time.December, 31, -1},
	}
	for _, c := range cases {
		days := DateToDays(c.y, c.m, c.d)
		assert.Equal(t, c.days, days)

		y, m, d := DaysToDate(c.days)
		assert.Equal(t, c.y, y)
		assert.Equal(t, c.m, m)
		assert.Equal(t, c.d, d)
	}
}

func TestTimestampUnitTruncation(t *testing.T) {
	ts := Timestamp{Year: 2022, Month: time.September, Day: 7, Hour: 16, Minute: 4, Second: 12, Nanosecond: 123456700}

	assert.Equal(t, Millis, UnitForPrecision(3))
	assert.Equal(t, Micros, UnitForPrecision(6))
	assert.Equal(t, Nanos, UnitForPrecision(7))

	assert.Equal(t, int64(123), ts.ToUnixUnit(Millis)%1000)
	assert.Equal(t, int64(123456), ts.ToUnixUnit(Micros)%1_000_000)
	assert.Equal(t, int64(123456700), ts.ToUnixUnit(Nanos)%1_000_000_000)
}

func TestTimestampUnitRoundTrip(t *testing.T) {
	ts := Timestamp{Year: 2000, Month: time.June, Day: 15, Hour: 1, Minute: 2, Second: 3, Nanosecond: 456_000_000}
	v := ts.ToUnixUnit(Millis)
	back := UnixUnitToTimestamp(v, Millis)
	assert.Equal(t, ts.Year, back.Year)
	assert.Equal(t, ts.Month, back.Month)
	assert.Equal(t, ts.Day, back.Day)
	assert.Equal(t, ts.Hour, back.Hour)
	assert.Equal(t, ts.Minute, back.Minute)
	assert.Equal(t, ts.Second, back.Second)
	assert.Equal(t, ts.Nanosecond, back.Nanosecond)
}

func TestI128RoundTrip(t *testing.T) {
	cases := []string{
		"0", "1", "-1", "123456789", "-123456789012345678901234567890123",
	}
	length := DecimalFLBALength(38)
	for _, s := range cases {
		v, ok := new(big.Int).SetString(s, 10)
		require.True(t, ok)

		packed := I128ToBE(v, length)
		back := I128FromBE(packed)
		assert.Equal(t, 0, v.Cmp(back), "round trip mismatch for %s", s)
	}
}

func TestDecimalFLBALength(t *testing.T) {
	// precision=33 needs ceil((33*log2(10)+1)/8) = ceil(110.62/8) = 14 bytes,
	// matching spec.md §8 scenario 3.
	assert.Equal(t, 14, DecimalFLBALength(33))
}

func TestUTF16ToUTF8RoundTrip(t *testing.T) {
	s := "Hello, 世界! \U0001F600"
	units := UTF8ToUTF16([]byte(s))
	back, err := UTF16ToUTF8(units)
	require.NoError(t, err)
	assert.Equal(t, s, string(back))
}

func TestUTF16ToUTF8BadSurrogate(t *testing.T) {
	// Lone high surrogate, no low surrogate following.
	_, err := UTF16ToUTF8([]uint16{0xD800})
	assert.Error(t, err)
}

func TestSanitizeUTF8(t *testing.T) {
	valid := []byte("clean text")
	out, replaced := SanitizeUTF8(valid)
	assert.False(t, replaced)
	assert.Equal(t, valid, out)

	invalid := []byte{'a', 0xff, 'b'}
	out, replaced = SanitizeUTF8(invalid)
	assert.True(t, replaced)
	assert.Contains(t, string(out), "a")
	assert.Contains(t, string(out), "b")
}

func TestParseTimeOfDay(t *testing.T) {
	sec, ns, err := ParseTimeOfDay("16:04:12.1234567")
	require.NoError(t, err)
	assert.Equal(t, 16*3600+4*60+12, sec)
	assert.Equal(t, 123456700, ns)

	sec, ns, err = ParseTimeOfDay("00:00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, sec)
	assert.Equal(t, 0, ns)

	_, _, err = ParseTimeOfDay("bad")
	assert.Error(t, err)
}

func TestParseTimestampTZ(t *testing.T) {
	ts, err := ParseTimestampTZ("2022-09-07 16:04:12.1234567 +02:00")
	require.NoError(t, err)

	unit := Nanos
	got := ts.ToUnixUnit(unit)
	assert.Equal(t, int64(1662559452123456700), got)
}
