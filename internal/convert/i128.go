package convert

import (
	"math"
	"math/big"
)

// I128FromBE sign-extends a two's-complement big-endian byte slice of any
// length (as an ODBC driver might report for a variable-length numeric
// buffer) to a signed 128-bit integer represented as *big.Int. The MSB of
// the first byte is the sign bit.
func I128FromBE(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}

	negative := b[0]&0x80 != 0
	if !negative {
		return new(big.Int).SetBytes(b)
	}

	// Two's complement: invert bits, add 1, negate.
	inv := make([]byte, len(b))
	for i, v := range b {
		inv[i] = ^v
	}
	mag := new(big.Int).SetBytes(inv)
	mag.Add(mag, big.NewInt(1))
	return mag.Neg(mag)
}

// I128ToBE packs a signed big.Int into a two's-complement big-endian byte
// slice exactly length bytes long (left-padded with the sign byte),
// matching Parquet's FIXED_LEN_BYTE_ARRAY decimal physical representation.
// Panics if the value does not fit in length bytes — the strategy that
// calls this has already validated precision against length via
// DecimalFLBALength.
func I128ToBE(v *big.Int, length int) []byte {
	out := make([]byte, length)

	if v.Sign() >= 0 {
		b := v.Bytes()
		copy(out[length-len(b):], b)
		return out
	}

	// Two's complement of |v|: compute 2^(8*length) + v.
	mod := new(big.Int).Lsh(big.NewInt(1), uint(8*length))
	twos := new(big.Int).Add(mod, v)
	b := twos.Bytes()
	// twos is guaranteed non-negative and < mod; left-pad with 0xFF is
	// wrong for byte-boundary cases, so pad with zero then the Bytes()
	// call already encodes the correct high bits because twos < 2^(8*length).
	copy(out[length-len(b):], b)
	return out
}

// DecimalFLBALength computes the fixed-len-byte-array length needed to
// hold any decimal value of the given precision: ceil((p*log2(10) + 1) / 8).
func DecimalFLBALength(precision int) int {
	bits := float64(precision)*math.Log2(10) + 1
	return int(math.Ceil(bits / 8))
}
