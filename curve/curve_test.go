package curve

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func TestGeneratorIsOnCurve(t *testing.T) {
	require.True(t, Generator().IsOnCurve())
	require.False(t, Generator().IsIdentity())
}

func TestIdentityIsOnCurve(t *testing.T) {
	require.True(t, Identity().IsOnCurve())
	require.True(t, Identity().IsIdentity())
}

func TestAddIdentity(t *testing.T) {
	g := Generator()
	require.True(t, g.Add(Identity()).Equal(g), "G + 0 = G")
	require.True(t, Identity().Add(g).Equal(g), "0 + G = G")
}

func TestScalarMulByOneAndZero(t *testing.T) {
	g := Generator()
	require.True(t, g.ScalarMul(big.NewInt(1)).Equal(g), "1*G = G")
	require.True(t, g.ScalarMul(big.NewInt(0)).IsIdentity(), "0*G = identity")
}

func TestDoubleEqualsAddSelf(t *testing.T) {
	g := Generator()
	require.True(t, g.Double().Equal(g.ScalarMul(big.NewInt(2))))
}

func TestScalarMulAdditive(t *testing.T) {
	g := Generator()
	a := big.NewInt(7)
	b := big.NewInt(13)

	sumPoints := g.ScalarMul(a).Add(g.ScalarMul(b))
	sumScalar := g.ScalarMul(new(big.Int).Add(a, b))

	require.True(t, sumPoints.IsOnCurve())
	require.True(t, sumPoints.Equal(sumScalar), "(a+b)*G = a*G + b*G")
}

func TestOrderTimesGeneratorIsIdentity(t *testing.T) {
	require.True(t, Generator().ScalarMul(Order()).IsIdentity(), "n*G must be identity")
}

func TestScalarMulResultOnCurve(t *testing.T) {
	p := Generator().ScalarMul(big.NewInt(123456789))
	require.True(t, p.IsOnCurve())
}

func TestFixedBaseMatchesVariableBase(t *testing.T) {
	g := Generator()
	scalars := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(2),
		big.NewInt(15),
		big.NewInt(16),
		big.NewInt(123456789),
		new(big.Int).Sub(Order(), big.NewInt(1)),
		// full-width coordinate field element, beyond the subgroup order
		new(big.Int).Sub(Modulus(), big.NewInt(1)),
	}
	for i := 0; i < 8; i++ {
		k, err := rand.Int(rand.Reader, Modulus())
		require.NoError(t, err)
		scalars = append(scalars, k)
	}
	for _, k := range scalars {
		require.True(t, ScalarBaseMul(k).Equal(g.ScalarMul(k)), "fixed and variable base disagree for k=%s", k)
	}
}

func TestValidateRejectsOffCurve(t *testing.T) {
	p := Generator()
	p.X.Add(&p.X, &p.Y)
	require.ErrorIs(t, Validate(p), ErrInvalidCurvePoint)
	require.NoError(t, Validate(Generator()))
}

func TestInverse(t *testing.T) {
	var x fr.Element
	x.SetUint64(42)

	inv, err := Inverse(x)
	require.NoError(t, err)

	var prod fr.Element
	prod.Mul(&x, &inv)
	require.True(t, prod.IsOne())

	_, err = Inverse(fr.Element{})
	require.ErrorIs(t, err, ErrDivisionByZero)
}
