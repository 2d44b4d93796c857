package schnorr

import (
	"crypto/sha256"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	bnMimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// Challenge derives the Fiat-Shamir challenge
//
//	e = MiMC(R.x, pkX, pkY, msgHash)
//
// absorbing each element as its 32-byte big-endian encoding, exactly
// matching the in-circuit MiMC gate. Any divergence between the two
// breaks the proof of signature knowledge.
func Challenge(rx, pkX, pkY, msgHash fr.Element) fr.Element {
	h := bnMimc.NewMiMC()
	for _, v := range []fr.Element{rx, pkX, pkY, msgHash} {
		b := v.Bytes()
		h.Write(b[:])
	}
	var e fr.Element
	e.SetBytes(h.Sum(nil))
	return e
}

// HashMessage maps an arbitrary byte-string message to a field element:
// SHA-256(message) interpreted as a big-endian integer, reduced mod p.
// The mapping is total and deterministic.
func HashMessage(message []byte) fr.Element {
	digest := sha256.Sum256(message)
	var h fr.Element
	h.SetBytes(digest[:])
	return h
}
