// Package pipeline sequences the external proving-system capabilities
// (compile, trusted setup, witness evaluation, prove, verify) for the
// Schnorr verification circuit. One Pipeline serves one proof request
// end to end; independent requests run on independent Pipelines.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	gnarkwitness "github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/rs/zerolog"

	"zkschnorr/circuit"
	"zkschnorr/witness"
)

// Stage identifies how far a pipeline has progressed. Each stage's
// artifact is the next stage's input.
type Stage int

const (
	StageUncompiled Stage = iota
	StageCompiled
	StageSetupDone
	StageWitnessBuilt
	StageProved
	StageVerified
)

func (s Stage) String() string {
	switch s {
	case StageUncompiled:
		return "uncompiled"
	case StageCompiled:
		return "compiled"
	case StageSetupDone:
		return "setup-done"
	case StageWitnessBuilt:
		return "witness-built"
	case StageProved:
		return "proved"
	case StageVerified:
		return "verified"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ErrConstraintUnsatisfied reports a witness the constraint system
// rejects: a forged or malformed signature, or a divergence between the
// native verifier and the circuit.
var ErrConstraintUnsatisfied = errors.New("witness does not satisfy the constraint system")

// StageError reports which stage failed and why. The pipeline stays at
// its pre-failure stage; the operator corrects the precondition and
// re-runs the failed stage, nothing is retried automatically.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Pipeline holds the artifacts produced so far for one proof request.
// It is not safe for concurrent use; the stages of a single request are
// inherently sequential.
type Pipeline struct {
	log zerolog.Logger

	stage  Stage
	ccs    constraint.ConstraintSystem
	pk     groth16.ProvingKey
	vk     groth16.VerifyingKey
	record *witness.Record
	full   gnarkwitness.Witness
	public gnarkwitness.Witness
	proof  groth16.Proof
}

func New(log zerolog.Logger) *Pipeline {
	return &Pipeline{log: log.With().Str("component", "pipeline").Logger()}
}

// Stage returns the last successfully completed stage.
func (p *Pipeline) Stage() Stage { return p.stage }

// VerifyingKey exposes the setup artifact, e.g. to hand to an
// independent verifier.
func (p *Pipeline) VerifyingKey() groth16.VerifyingKey { return p.vk }

// Proof exposes the proving artifact once StageProved is reached.
func (p *Pipeline) Proof() groth16.Proof { return p.proof }

// PublicWitness exposes the public signal assignment once
// StageWitnessBuilt is reached.
func (p *Pipeline) PublicWitness() gnarkwitness.Witness { return p.public }

func (p *Pipeline) fail(s Stage, err error) error {
	serr := &StageError{Stage: s, Err: err}
	p.log.Error().Str("stage", s.String()).Err(err).Msg("stage failed")
	return serr
}

func (p *Pipeline) require(have Stage, attempting Stage) error {
	if p.stage < have {
		return p.fail(attempting, fmt.Errorf("requires stage %s, pipeline is at %s", have, p.stage))
	}
	return nil
}

// Compile turns the Schnorr verification circuit into an R1CS
// constraint system. The compiled system is stateless and may back any
// number of subsequent witnesses.
func (p *Pipeline) Compile() error {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit.SchnorrCircuit{})
	if err != nil {
		return p.fail(StageCompiled, err)
	}
	p.ccs = ccs
	p.stage = StageCompiled
	p.log.Info().Int("constraints", ccs.GetNbConstraints()).Msg("constraint system compiled")
	return nil
}

// Setup runs the Groth16 trusted setup for the compiled system,
// producing the proving and verifying keys.
func (p *Pipeline) Setup() error {
	if err := p.require(StageCompiled, StageSetupDone); err != nil {
		return err
	}
	pk, vk, err := groth16.Setup(p.ccs)
	if err != nil {
		return p.fail(StageSetupDone, err)
	}
	p.pk, p.vk = pk, vk
	p.stage = StageSetupDone
	p.log.Info().Msg("trusted setup done")
	return nil
}

// BuildWitness evaluates the signal record into full and public gnark
// witnesses. It may be re-run with a new record to prove another
// (key, message) pair against the same setup.
func (p *Pipeline) BuildWitness(rec *witness.Record) error {
	if err := p.require(StageSetupDone, StageWitnessBuilt); err != nil {
		return err
	}
	full, err := frontend.NewWitness(rec.Assignment(), ecc.BN254.ScalarField())
	if err != nil {
		return p.fail(StageWitnessBuilt, err)
	}
	public, err := full.Public()
	if err != nil {
		return p.fail(StageWitnessBuilt, err)
	}
	p.record = rec
	p.full = full
	p.public = public
	p.stage = StageWitnessBuilt
	p.log.Info().Msg("witness built")
	return nil
}

// Prove generates a Groth16 proof for the current witness. A proving
// failure means the witness does not satisfy the constraint system: a
// forged or malformed signature, or an inconsistency between native and
// in-circuit verification.
func (p *Pipeline) Prove() error {
	if err := p.require(StageWitnessBuilt, StageProved); err != nil {
		return err
	}
	proof, err := groth16.Prove(p.ccs, p.pk, p.full)
	if err != nil {
		return p.fail(StageProved, fmt.Errorf("%w: %v", ErrConstraintUnsatisfied, err))
	}
	p.proof = proof
	p.stage = StageProved
	p.log.Info().Msg("proof generated")
	return nil
}

// Verify checks the proof against the verifying key and the public
// signals.
func (p *Pipeline) Verify() error {
	if err := p.require(StageProved, StageVerified); err != nil {
		return err
	}
	if err := groth16.Verify(p.proof, p.vk, p.public); err != nil {
		return p.fail(StageVerified, err)
	}
	p.stage = StageVerified
	p.log.Info().Msg("proof verified")
	return nil
}

// Run drives a fresh pipeline through all five stages for rec.
func (p *Pipeline) Run(rec *witness.Record) error {
	if err := p.Compile(); err != nil {
		return err
	}
	if err := p.Setup(); err != nil {
		return err
	}
	if err := p.BuildWitness(rec); err != nil {
		return err
	}
	if err := p.Prove(); err != nil {
		return err
	}
	return p.Verify()
}
