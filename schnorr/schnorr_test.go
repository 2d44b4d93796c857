package schnorr

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"zkschnorr/curve"
)

func TestSignVerifyRoundtrip(t *testing.T) {
	priv, err := GenerateKey(rand.Reader)
	require.NoError(t, err)

	messages := [][]byte{
		[]byte("hello world"),
		{},
		[]byte("schnorr over baby jubjub"),
		make([]byte, 10000),
	}
	for _, msg := range messages {
		msgHash := HashMessage(msg)
		sig := priv.Sign(msgHash)

		ok, err := priv.PublicKey.Verify(msgHash, sig)
		require.NoError(t, err)
		require.True(t, ok, "signature must verify for message %q", msg)
	}
}

func TestWrongMessageFails(t *testing.T) {
	priv, err := GenerateKey(rand.Reader)
	require.NoError(t, err)

	sig := priv.Sign(HashMessage([]byte("hello")))
	ok, err := priv.PublicKey.Verify(HashMessage([]byte("world")), sig)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestWrongKeyFails(t *testing.T) {
	priv1, err := GenerateKey(rand.Reader)
	require.NoError(t, err)
	priv2, err := GenerateKey(rand.Reader)
	require.NoError(t, err)

	msgHash := HashMessage([]byte("shared message"))
	sig := priv1.Sign(msgHash)

	ok, err := priv2.PublicKey.Verify(msgHash, sig)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTamperedSignatureFails(t *testing.T) {
	priv, err := GenerateKey(rand.Reader)
	require.NoError(t, err)

	msgHash := HashMessage([]byte("tamper"))
	sig := priv.Sign(msgHash)

	badS := sig
	badS.S = new(big.Int).Xor(sig.S, big.NewInt(1))
	ok, err := priv.PublicKey.Verify(msgHash, badS)
	require.NoError(t, err)
	require.False(t, ok, "flipping one bit of s must invalidate the signature")

	badE := sig
	var one fr.Element
	one.SetOne()
	badE.E.Add(&sig.E, &one)
	ok, err = priv.PublicKey.Verify(msgHash, badE)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeterministicSigning(t *testing.T) {
	priv := NewPrivateKey(big.NewInt(12345))
	msgHash := HashMessage([]byte("deterministic"))

	sig1 := priv.Sign(msgHash)
	sig2 := priv.Sign(msgHash)
	require.Zero(t, sig1.S.Cmp(sig2.S), "same key+msg must give same s")
	require.True(t, sig1.E.Equal(&sig2.E), "same key+msg must give same e")
}

func TestNonceUniqueness(t *testing.T) {
	priv := NewPrivateKey(big.NewInt(98765))

	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		msgHash := HashMessage([]byte{byte(i)})
		k := nonce(priv.sk, msgHash)
		require.False(t, seen[k.String()], "nonce reused across distinct messages")
		seen[k.String()] = true
	}
}

func TestVerifyRejectsOffCurveKey(t *testing.T) {
	priv, err := GenerateKey(rand.Reader)
	require.NoError(t, err)

	msgHash := HashMessage([]byte("off curve"))
	sig := priv.Sign(msgHash)

	bad := priv.PublicKey
	var one fr.Element
	one.SetOne()
	bad.A.X.Add(&bad.A.X, &one)

	_, err = bad.Verify(msgHash, sig)
	require.ErrorIs(t, err, curve.ErrInvalidCurvePoint)
}

func TestVerifyRejectsOversizedScalar(t *testing.T) {
	priv, err := GenerateKey(rand.Reader)
	require.NoError(t, err)

	msgHash := HashMessage([]byte("range"))
	sig := priv.Sign(msgHash)
	sig.S = new(big.Int).Lsh(big.NewInt(1), SBits)

	_, err = priv.PublicKey.Verify(msgHash, sig)
	require.ErrorIs(t, err, ErrRangeViolation)
}

func TestPublicKeyMatchesScalar(t *testing.T) {
	priv := NewPrivateKey(big.NewInt(1))
	require.True(t, priv.A.Equal(curve.Generator()), "sk=1 must give PK=G")
	require.True(t, priv.A.IsOnCurve())
}

func TestChallengeDeterministic(t *testing.T) {
	var a, b, c, d fr.Element
	a.SetUint64(1)
	b.SetUint64(2)
	c.SetUint64(3)
	d.SetUint64(4)

	h1 := Challenge(a, b, c, d)
	h2 := Challenge(a, b, c, d)
	require.True(t, h1.Equal(&h2))

	h3 := Challenge(a, b, c, a)
	require.False(t, h1.Equal(&h3), "different inputs must produce different challenges")
}

func TestHashMessage(t *testing.T) {
	h1 := HashMessage([]byte("hello world"))
	h2 := HashMessage([]byte("hello world"))
	require.True(t, h1.Equal(&h2))

	h3 := HashMessage([]byte("hello"))
	require.False(t, h1.Equal(&h3))
	require.False(t, h1.IsZero())
}
