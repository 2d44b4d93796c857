package circuit

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	stdMimc "github.com/consensys/gnark/std/hash/mimc"

	te "github.com/consensys/gnark-crypto/ecc/twistededwards"
)

// Bit widths of the scalar decompositions consumed by the multiplication
// gadgets: s lives in Z_n (n < 2^253), e is a full-width element of F_p
// (p < 2^254).
const (
	SBits = 253
	EBits = 254
)

// SchnorrCircuit proves knowledge of a Schnorr signature (s, e) on
// msgHash under the public key (pkX, pkY), without revealing s or e:
//
//	R' = s*G + e*PK
//	MiMC(R'.x, pkX, pkY, msgHash) == e
//
// Satisfiability is equivalent to acceptance by the native verifier in
// the schnorr package.
type SchnorrCircuit struct {
	PkX     frontend.Variable `gnark:"pkX,public"`
	PkY     frontend.Variable `gnark:"pkY,public"`
	MsgHash frontend.Variable `gnark:"msgHash,public"`

	// signature, kept private
	S frontend.Variable `gnark:"s"`
	E frontend.Variable `gnark:"e"`
}

func (c *SchnorrCircuit) Define(api frontend.API) error {
	// Baby Jubjub, the twisted Edwards curve over the BN254 scalar field
	curve, err := twistededwards.NewEdCurve(api, te.BN254)
	if err != nil {
		return err
	}

	// the public key must satisfy the curve equation
	pk := twistededwards.Point{X: c.PkX, Y: c.PkY}
	curve.AssertIsOnCurve(pk)

	// range checks matching the widths the scalar muls decompose into
	api.ToBinary(c.S, SBits)
	api.ToBinary(c.E, EBits)

	// R' = s*G + e*PK
	params := curve.Params()
	base := twistededwards.Point{X: params.Base[0], Y: params.Base[1]}
	sG := curve.ScalarMul(base, c.S)
	ePK := curve.ScalarMul(pk, c.E)
	rPrime := curve.Add(sG, ePK)

	// recompute the challenge in-circuit and bind it to the witness
	h, err := stdMimc.NewMiMC(api)
	if err != nil {
		return err
	}
	h.Write(rPrime.X, c.PkX, c.PkY, c.MsgHash)
	api.AssertIsEqual(h.Sum(), c.E)

	return nil
}
