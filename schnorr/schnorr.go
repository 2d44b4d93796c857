// Package schnorr implements Schnorr signatures over the Baby Jubjub
// curve with a MiMC challenge, the scheme whose verification equation is
// re-expressed as constraints by the circuit package.
//
// Signing:
//
//	k = H(sk || msgHash) mod n        deterministic nonce
//	R = k*G
//	e = MiMC(R.x, pkX, pkY, msgHash)  challenge in F_p
//	s = k - e*sk mod n                response in Z_n
//
// Verification accepts iff MiMC((s*G + e*PK).x, pkX, pkY, msgHash) == e.
package schnorr

import (
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/blake2b"

	"zkschnorr/curve"
)

// SBits is the bit width the response scalar must fit in; it matches the
// decomposition width of the fixed-base multiplication gadget.
const SBits = 253

// ErrRangeViolation reports a scalar wider than the bit width assumed by
// the in-circuit multiplication gadgets.
var ErrRangeViolation = fmt.Errorf("schnorr: scalar exceeds the %d-bit width assumed by the multiplication gadget", SBits)

// PublicKey is a point A = sk*G on Baby Jubjub.
type PublicKey struct {
	A curve.Point
}

// PrivateKey holds the secret scalar sk in Z_n and the derived public key.
type PrivateKey struct {
	PublicKey
	sk *big.Int
}

// Signature is the pair (s, e). The response s lives in Z_n; the
// challenge e is a full-width element of the coordinate field F_p.
type Signature struct {
	S *big.Int
	E fr.Element
}

// GenerateKey samples a uniform secret scalar from rand and derives the
// matching public key.
func GenerateKey(rand io.Reader) (*PrivateKey, error) {
	sk, err := cryptoRandInt(rand, curve.Order())
	if err != nil {
		return nil, fmt.Errorf("schnorr: sampling secret scalar: %w", err)
	}
	return NewPrivateKey(sk), nil
}

// NewPrivateKey derives a keypair from an existing secret scalar,
// reducing it mod the subgroup order n.
func NewPrivateKey(sk *big.Int) *PrivateKey {
	s := new(big.Int).Mod(sk, curve.Order())
	return &PrivateKey{
		PublicKey: PublicKey{A: curve.ScalarBaseMul(s)},
		sk:        s,
	}
}

// Sign produces a signature on msgHash with a deterministic nonce, so the
// same (key, message) pair always yields the same signature and distinct
// messages never reuse a nonce.
func (priv *PrivateKey) Sign(msgHash fr.Element) Signature {
	return priv.SignWithNonce(nonce(priv.sk, msgHash), msgHash)
}

// SignWithNonce signs with an explicit nonce scalar. Reusing a nonce
// across two distinct messages leaks the private key; only tests should
// call this directly.
func (priv *PrivateKey) SignWithNonce(k *big.Int, msgHash fr.Element) Signature {
	r := curve.ScalarBaseMul(k)
	e := Challenge(r.X, priv.A.X, priv.A.Y, msgHash)

	var eInt big.Int
	e.BigInt(&eInt)

	// s = k - e*sk mod n
	s := new(big.Int).Mul(&eInt, priv.sk)
	s.Sub(k, s)
	s.Mod(s, curve.Order())

	return Signature{S: s, E: e}
}

// Verify checks sig against msgHash. It returns an error, not a plain
// reject, when an input violates a structural invariant: an off-curve
// public key (curve.ErrInvalidCurvePoint) or an out-of-range response
// scalar (ErrRangeViolation). The same checks are enforced redundantly
// inside the constraint system.
func (pub PublicKey) Verify(msgHash fr.Element, sig Signature) (bool, error) {
	if err := curve.Validate(pub.A); err != nil {
		return false, err
	}
	if sig.S.Sign() < 0 || sig.S.BitLen() > SBits {
		return false, ErrRangeViolation
	}

	// R' = s*G + e*PK
	var eInt big.Int
	sig.E.BigInt(&eInt)
	rPrime := curve.ScalarBaseMul(sig.S).Add(pub.A.ScalarMul(&eInt))

	eCheck := Challenge(rPrime.X, pub.A.X, pub.A.Y, msgHash)
	return eCheck.Equal(&sig.E), nil
}

// nonce derives k = blake2b-512(sk || msgHash) mod n. The 512-bit digest
// makes the reduction bias negligible.
func nonce(sk *big.Int, msgHash fr.Element) *big.Int {
	h, err := blake2b.New512(nil)
	if err != nil {
		panic(err) // only fails for a bad key argument
	}
	var skBuf [fr.Bytes]byte
	sk.FillBytes(skBuf[:])
	h.Write(skBuf[:])
	m := msgHash.Bytes()
	h.Write(m[:])

	k := new(big.Int).SetBytes(h.Sum(nil))
	return k.Mod(k, curve.Order())
}

// cryptoRandInt returns a uniform integer in [1, max).
func cryptoRandInt(rand io.Reader, max *big.Int) (*big.Int, error) {
	bytes := make([]byte, (max.BitLen()+7)/8+8)
	if _, err := io.ReadFull(rand, bytes); err != nil {
		return nil, err
	}
	k := new(big.Int).SetBytes(bytes)
	k.Mod(k, new(big.Int).Sub(max, big.NewInt(1)))
	k.Add(k, big.NewInt(1))
	return k, nil
}
