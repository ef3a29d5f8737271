// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package encoding

import (
	"strconv"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
)

// Decimal key layout. None of the bytes produced is ever 0x00, so an encoded
// decimal can be followed by the 0x00 key separator.
//
//	negative: decimalNeg, ^exponent, ^digits..., decimalNegTerminator
//	zero:     decimalZero
//	positive: decimalPos, exponent, digits...
//
// The exponent is the adjusted (scientific) exponent biased by 128; digits
// are the ASCII digits of the reduced coefficient.
const (
	decimalNeg           byte = 0x01
	decimalZero          byte = 0x02
	decimalPos           byte = 0x03
	decimalNegTerminator byte = 0xff

	decimalExponentBias = 128
	// MinDecimalExponent and MaxDecimalExponent bound the adjusted exponent
	// of encodable decimals.
	MinDecimalExponent = -127
	MaxDecimalExponent = 126
)

// EncodeDecimalAscending appends the order-preserving encoding of d to b. The
// decimal is reduced first, so numerically equal values (1.50 and 1.5)
// produce identical keys.
func EncodeDecimalAscending(b []byte, d *apd.Decimal) ([]byte, error) {
	if d.Form != apd.Finite {
		return nil, errors.Newf("cannot encode non-finite decimal %s in a key", d)
	}
	if d.IsZero() {
		return append(b, decimalZero), nil
	}
	var reduced apd.Decimal
	reduced.Reduce(d)
	digits := reduced.Coeff.String()
	adjusted := int64(reduced.Exponent) + int64(len(digits)) - 1
	if adjusted < MinDecimalExponent || adjusted > MaxDecimalExponent {
		return nil, errors.Newf("decimal %s is out of range for a key column", d)
	}
	exp := byte(adjusted + decimalExponentBias)
	if !reduced.Negative {
		b = append(b, decimalPos, exp)
		return append(b, digits...), nil
	}
	b = append(b, decimalNeg, ^exp)
	for i := 0; i < len(digits); i++ {
		b = append(b, ^digits[i])
	}
	return append(b, decimalNegTerminator), nil
}

// DecodeDecimalAscending decodes a decimal encoded by EncodeDecimalAscending
// and returns the remainder of the buffer. Positive decimals are not
// self-delimiting: the digits run until the end of b or the first byte that
// is not an ASCII digit.
func DecodeDecimalAscending(b []byte) ([]byte, *apd.Decimal, error) {
	if len(b) == 0 {
		return nil, nil, errors.Errorf("insufficient bytes to decode decimal")
	}
	switch b[0] {
	case decimalZero:
		return b[1:], apd.New(0, 0), nil
	case decimalPos:
		if len(b) < 3 {
			return nil, nil, errors.Errorf("insufficient bytes to decode decimal")
		}
		adjusted := int64(b[1]) - decimalExponentBias
		i := 2
		for ; i < len(b) && b[i] >= '0' && b[i] <= '9'; i++ {
		}
		d, err := makeDecimal(false, string(b[2:i]), adjusted)
		return b[i:], d, err
	case decimalNeg:
		if len(b) < 4 {
			return nil, nil, errors.Errorf("insufficient bytes to decode decimal")
		}
		adjusted := int64(^b[1]) - decimalExponentBias
		var digits []byte
		i := 2
		for ; i < len(b) && b[i] != decimalNegTerminator; i++ {
			digits = append(digits, ^b[i])
		}
		if i == len(b) {
			return nil, nil, errors.Errorf("did not find terminator for negative decimal")
		}
		d, err := makeDecimal(true, string(digits), adjusted)
		return b[i+1:], d, err
	default:
		return nil, nil, errors.Errorf("invalid decimal marker %#x", b[0])
	}
}

func makeDecimal(negative bool, digits string, adjusted int64) (*apd.Decimal, error) {
	s := digits + "E" + strconv.FormatInt(adjusted-int64(len(digits))+1, 10)
	if negative {
		s = "-" + s
	}
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding decimal")
	}
	return d, nil
}
