package encoding

import (
	"strings"
)

const crockfordAlphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// EncodeCrockfordB32LC encodes input with Crockford's base32 alphabet in lowercase, without padding.
// A trailing partial group is padded with zero bits.
func EncodeCrockfordB32LC(input []byte) string {
	var (
		out   strings.Builder
		bits  uint
		accum uint
	)

	out.Grow((len(input)*8 + 4) / 5)

	for _, b := range input {
		accum = accum<<8 | uint(b)
		bits += 8

		for bits >= 5 {
			bits -= 5
			out.WriteByte(crockfordAlphabet[(accum>>bits)&0x1F])
		}

		accum &= 1<<bits - 1
	}

	if bits > 0 {
		out.WriteByte(crockfordAlphabet[(accum<<(5-bits))&0x1F])
	}

	return out.String()
}
