// Package curve implements affine arithmetic on the Baby Jubjub twisted
// Edwards curve, the curve embedded in the BN254 scalar field:
//
//	a*x^2 + y^2 = 1 + d*x^2*y^2,  a = 168700, d = 168696
//
// Coefficients, generator and subgroup order are taken from
// gnark-crypto, so native points are directly compatible with the
// in-circuit twisted Edwards gadget.
package curve

import (
	"errors"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	edbn254 "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
)

var (
	// ErrInvalidCurvePoint reports a point that does not satisfy the
	// twisted Edwards curve equation.
	ErrInvalidCurvePoint = errors.New("curve: point does not satisfy a*x^2 + y^2 = 1 + d*x^2*y^2")

	// ErrDivisionByZero reports a field inversion of zero.
	ErrDivisionByZero = errors.New("curve: inversion of zero field element")
)

var params = edbn254.GetEdwardsCurve()

// Point is an affine Baby Jubjub point with coordinates in the BN254
// scalar field. The zero value is NOT the identity; use Identity.
type Point struct {
	X, Y fr.Element
}

// Identity returns the neutral element (0, 1).
func Identity() Point {
	var p Point
	p.Y.SetOne()
	return p
}

// Generator returns the fixed generator of the prime-order subgroup.
func Generator() Point {
	return Point{X: params.Base.X, Y: params.Base.Y}
}

// Order returns the prime order n of the subgroup generated by Generator.
func Order() *big.Int {
	return new(big.Int).Set(&params.Order)
}

// Modulus returns the prime p of the coordinate field.
func Modulus() *big.Int {
	return fr.Modulus()
}

// IsIdentity reports whether p is the neutral element (0, 1).
func (p Point) IsIdentity() bool {
	return p.X.IsZero() && p.Y.IsOne()
}

// Equal reports coordinate-wise equality.
func (p Point) Equal(q Point) bool {
	return p.X.Equal(&q.X) && p.Y.Equal(&q.Y)
}

// IsOnCurve checks the curve equation a*x^2 + y^2 = 1 + d*x^2*y^2.
func (p Point) IsOnCurve() bool {
	var x2, y2, lhs, rhs fr.Element
	one := fr.One()
	x2.Square(&p.X)
	y2.Square(&p.Y)
	lhs.Mul(&params.A, &x2).Add(&lhs, &y2)
	rhs.Mul(&params.D, &x2).Mul(&rhs, &y2).Add(&rhs, &one)
	return lhs.Equal(&rhs)
}

// Validate returns ErrInvalidCurvePoint unless p satisfies the curve
// equation.
func Validate(p Point) error {
	if !p.IsOnCurve() {
		return ErrInvalidCurvePoint
	}
	return nil
}

// Add returns p + q using the unified twisted Edwards addition law:
//
//	x3 = (x1*y2 + y1*x2) / (1 + d*x1*x2*y1*y2)
//	y3 = (y1*y2 - a*x1*x2) / (1 - d*x1*x2*y1*y2)
//
// The law is complete for these curve parameters: the denominators are
// nonzero for any pair of curve points, the identity included.
func (p Point) Add(q Point) Point {
	var x1y2, y1x2, x1x2, y1y2, dxy, num, den fr.Element
	one := fr.One()

	x1y2.Mul(&p.X, &q.Y)
	y1x2.Mul(&p.Y, &q.X)
	x1x2.Mul(&p.X, &q.X)
	y1y2.Mul(&p.Y, &q.Y)
	dxy.Mul(&params.D, &x1x2).Mul(&dxy, &y1y2)

	var r Point
	num.Add(&x1y2, &y1x2)
	den.Add(&one, &dxy)
	den.Inverse(&den)
	r.X.Mul(&num, &den)

	num.Mul(&params.A, &x1x2)
	num.Sub(&y1y2, &num)
	den.Sub(&one, &dxy)
	den.Inverse(&den)
	r.Y.Mul(&num, &den)
	return r
}

// Double returns p + p.
func (p Point) Double() Point {
	return p.Add(p)
}

// ScalarMul returns k*p by variable-base double-and-add over the natural
// bits of k. k must be non-negative; since the subgroup has order n,
// passing a full-width field element computes (k mod n)*p.
func (p Point) ScalarMul(k *big.Int) Point {
	res := Identity()
	tmp := p
	for i := 0; i < k.BitLen(); i++ {
		if k.Bit(i) == 1 {
			res = res.Add(tmp)
		}
		tmp = tmp.Double()
	}
	return res
}

const (
	windowBits = 4
	numWindows = 64 // covers 256-bit scalars
)

var (
	baseTable     [numWindows][1 << windowBits]Point
	baseTableOnce sync.Once
)

// initBaseTable fills baseTable[w][j] = j * 2^(4w) * G.
func initBaseTable() {
	step := Generator()
	for w := 0; w < numWindows; w++ {
		baseTable[w][0] = Identity()
		for j := 1; j < 1<<windowBits; j++ {
			baseTable[w][j] = baseTable[w][j-1].Add(step)
		}
		step = baseTable[w][1<<windowBits-1].Add(step)
	}
}

// ScalarBaseMul returns k*G using a 4-bit windowed precomputed table.
// It produces identical results to Generator().ScalarMul(k); the table is
// purely a performance optimization. k must be non-negative.
func ScalarBaseMul(k *big.Int) Point {
	if k.BitLen() > windowBits*numWindows {
		return Generator().ScalarMul(k)
	}
	baseTableOnce.Do(initBaseTable)

	res := Identity()
	for w := 0; w*windowBits < k.BitLen(); w++ {
		var nibble uint
		for b := 0; b < windowBits; b++ {
			nibble |= k.Bit(w*windowBits+b) << b
		}
		if nibble != 0 {
			res = res.Add(baseTable[w][nibble])
		}
	}
	return res
}

// Inverse returns 1/x in the coordinate field, or ErrDivisionByZero when
// x is zero.
func Inverse(x fr.Element) (fr.Element, error) {
	if x.IsZero() {
		return fr.Element{}, ErrDivisionByZero
	}
	var inv fr.Element
	inv.Inverse(&x)
	return inv, nil
}
