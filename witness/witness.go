// Package witness packages the circuit signals for one proof request:
// the public triple {pkX, pkY, msgHash} and the private signature pair
// {s, e}, with a decimal-string JSON codec for the external toolchain.
package witness

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"zkschnorr/circuit"
	"zkschnorr/curve"
	"zkschnorr/schnorr"
)

// ErrEncoding reports a signal value that is not a canonical base-10
// field element encoding.
var ErrEncoding = errors.New("witness: value is not a canonical base-10 field element")

// Record is the full signal assignment for one (key, message) pair.
// It is built once per proof request and consumed by the constraint
// evaluator.
type Record struct {
	// public signals
	PkX, PkY, MsgHash fr.Element
	// private signals
	S *big.Int
	E fr.Element
}

// Build hashes message, signs it with priv and packages all five
// signals. The freshly produced signature is checked with the native
// verifier first, so a broken signature fails fast here instead of
// surfacing as an unsatisfiable constraint system during proving.
func Build(priv *schnorr.PrivateKey, message []byte) (*Record, error) {
	msgHash := schnorr.HashMessage(message)
	sig := priv.Sign(msgHash)

	ok, err := priv.PublicKey.Verify(msgHash, sig)
	if err != nil {
		return nil, fmt.Errorf("witness: validating fresh signature: %w", err)
	}
	if !ok {
		return nil, errors.New("witness: freshly produced signature does not verify")
	}

	return &Record{
		PkX:     priv.A.X,
		PkY:     priv.A.Y,
		MsgHash: msgHash,
		S:       new(big.Int).Set(sig.S),
		E:       sig.E,
	}, nil
}

// FromParts packages an externally supplied signature, enforcing the
// same structural invariants the circuit enforces: the public key must
// lie on the curve and s must fit the gadget bit width.
func FromParts(pub schnorr.PublicKey, msgHash fr.Element, sig schnorr.Signature) (*Record, error) {
	if err := curve.Validate(pub.A); err != nil {
		return nil, err
	}
	if sig.S.Sign() < 0 || sig.S.BitLen() > schnorr.SBits {
		return nil, schnorr.ErrRangeViolation
	}
	return &Record{
		PkX:     pub.A.X,
		PkY:     pub.A.Y,
		MsgHash: msgHash,
		S:       new(big.Int).Set(sig.S),
		E:       sig.E,
	}, nil
}

// Assignment returns the gnark witness assignment for SchnorrCircuit.
func (r *Record) Assignment() *circuit.SchnorrCircuit {
	return &circuit.SchnorrCircuit{
		PkX:     r.PkX,
		PkY:     r.PkY,
		MsgHash: r.MsgHash,
		S:       new(big.Int).Set(r.S),
		E:       r.E,
	}
}

// PublicSignals returns the public signal values in declaration order
// (pkX, pkY, msgHash) as decimal strings.
func (r *Record) PublicSignals() []string {
	return []string{r.PkX.String(), r.PkY.String(), r.MsgHash.String()}
}

type recordJSON struct {
	PkX     string `json:"pkX"`
	PkY     string `json:"pkY"`
	MsgHash string `json:"msgHash"`
	S       string `json:"s"`
	E       string `json:"e"`
}

func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		PkX:     r.PkX.String(),
		PkY:     r.PkY.String(),
		MsgHash: r.MsgHash.String(),
		S:       r.S.String(),
		E:       r.E.String(),
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("witness: %w", err)
	}

	var err error
	if r.PkX, err = parseSignal("pkX", raw.PkX); err != nil {
		return err
	}
	if r.PkY, err = parseSignal("pkY", raw.PkY); err != nil {
		return err
	}
	if r.MsgHash, err = parseSignal("msgHash", raw.MsgHash); err != nil {
		return err
	}
	if r.E, err = parseSignal("e", raw.E); err != nil {
		return err
	}

	s, ok := new(big.Int).SetString(raw.S, 10)
	if !ok || s.Sign() < 0 {
		return fmt.Errorf("%w: signal s=%q", ErrEncoding, raw.S)
	}
	if s.BitLen() > schnorr.SBits {
		return fmt.Errorf("%w: signal s=%q", schnorr.ErrRangeViolation, raw.S)
	}
	r.S = s
	return nil
}

// parseSignal decodes a decimal string into a field element, rejecting
// non-numeric, negative and non-reduced (>= p) values.
func parseSignal(name, dec string) (fr.Element, error) {
	v, ok := new(big.Int).SetString(dec, 10)
	if !ok || v.Sign() < 0 || v.Cmp(fr.Modulus()) >= 0 {
		return fr.Element{}, fmt.Errorf("%w: signal %s=%q", ErrEncoding, name, dec)
	}
	var e fr.Element
	e.SetBigInt(v)
	return e, nil
}

// WriteFile publishes the record as indented JSON, writing to a
// temporary file in the destination directory and renaming it into
// place so a crashed writer never leaves a partial artifact behind.
func (r *Record) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("witness: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("witness: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("witness: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("witness: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// ReadFile loads a record previously written with WriteFile.
func ReadFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("witness: %w", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
