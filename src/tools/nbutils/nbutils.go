// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package nbutils

import (
	"fmt"
	"math"

	"github.com/cockroachdb/apd/v2"
)

// Digits holds precision and scale information for a float (numeric) type:
//   - The precision: the total number of digits
//   - The scale: the number of digits to the right of the decimal point
//     (PostgresSQL definitions)
type Digits struct {
	Precision int8
	Scale     int8
}

// ToPrecision returns the given digits as a precision float:
//
// Digits{Precision: 6, Scale: 2} => 0.01
func (d Digits) ToPrecision() float64 {
	return math.Pow10(int(-d.Scale))
}

var ctx = apd.Context{
	MaxExponent: apd.MaxExponent,
	MinExponent: apd.MinExponent,
	Traps:       apd.DefaultTraps,
	Rounding:    apd.RoundHalfUp,
	Precision:   128,
}

// Round rounds the given val to the given precision, which is a float such as :
//
// - 0.01 to round at the nearest 100th
// - 10 to round at the nearest ten
//
// Rounding is done in decimal arithmetic so that 2.675 rounds to 2.68.
func Round(value float64, precision float64) (float64, error) {
	val, err := apd.New(0, 0).SetFloat64(value)
	if err != nil {
		return 0, fmt.Errorf("error while rounding %f: %s", value, err)
	}
	prec, err := apd.New(0, 0).SetFloat64(precision)
	if err != nil {
		return 0, fmt.Errorf("error while rounding precision %f: %s", precision, err)
	}
	normalized := apd.New(0, 0)
	if _, err = ctx.Quo(normalized, val, prec); err != nil {
		return 0, fmt.Errorf("error while rounding %f: %s", value, err)
	}
	if _, err = ctx.RoundToIntegralExact(normalized, normalized); err != nil {
		return 0, fmt.Errorf("error while rounding %f: %s", value, err)
	}
	if _, err = ctx.Mul(normalized, normalized, prec); err != nil {
		return 0, fmt.Errorf("error while rounding %f: %s", value, err)
	}
	return normalized.Float64()
}

// MustRound is the same as Round but panics on error.
func MustRound(value float64, precision float64) float64 {
	res, err := Round(value, precision)
	if err != nil {
		panic(err)
	}
	return res
}
