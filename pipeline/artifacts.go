package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
)

// Artifact file names inside an output directory.
const (
	FileConstraints   = "circuit.r1cs"
	FileProvingKey    = "proving.key"
	FileVerifyingKey  = "verifying.key"
	FileProof         = "proof.bin"
	FilePublicSignals = "public.json"
	FileWitnessInput  = "input.json"
)

// SaveArtifacts writes every artifact produced so far to dir: the
// constraint system, both keys, the witness input JSON, the proof and
// the public signals (a JSON array in signal declaration order). Each
// file is published atomically via a temp file and rename, so readers
// never observe a partially written artifact.
func (p *Pipeline) SaveArtifacts(dir string) error {
	if p.stage < StageProved {
		return p.fail(p.stage, fmt.Errorf("artifact set incomplete before stage %s", StageProved))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return p.fail(p.stage, err)
	}

	writers := map[string]io.WriterTo{
		FileConstraints:  p.ccs,
		FileProvingKey:   p.pk,
		FileVerifyingKey: p.vk,
		FileProof:        p.proof,
	}
	for name, w := range writers {
		if err := writeArtifact(filepath.Join(dir, name), w); err != nil {
			return p.fail(p.stage, fmt.Errorf("writing %s: %w", name, err))
		}
	}

	if err := p.record.WriteFile(filepath.Join(dir, FileWitnessInput)); err != nil {
		return p.fail(p.stage, err)
	}

	signals, err := json.MarshalIndent(p.record.PublicSignals(), "", "  ")
	if err != nil {
		return p.fail(p.stage, err)
	}
	if err := writeFileAtomic(filepath.Join(dir, FilePublicSignals), signals); err != nil {
		return p.fail(p.stage, fmt.Errorf("writing %s: %w", FilePublicSignals, err))
	}

	p.log.Info().Str("dir", dir).Msg("artifacts written")
	return nil
}

// LoadSetup restores the compiled constraint system and key material
// from dir, leaving the pipeline at StageSetupDone so new witnesses can
// be proved without recompiling or re-running the ceremony.
func (p *Pipeline) LoadSetup(dir string) error {
	ccs := groth16.NewCS(ecc.BN254)
	if err := readArtifact(filepath.Join(dir, FileConstraints), ccs); err != nil {
		return p.fail(StageCompiled, err)
	}
	pk := groth16.NewProvingKey(ecc.BN254)
	if err := readArtifact(filepath.Join(dir, FileProvingKey), pk); err != nil {
		return p.fail(StageSetupDone, err)
	}
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := readArtifact(filepath.Join(dir, FileVerifyingKey), vk); err != nil {
		return p.fail(StageSetupDone, err)
	}

	p.ccs = ccs
	p.pk, p.vk = pk, vk
	p.stage = StageSetupDone
	p.log.Info().Str("dir", dir).Msg("setup artifacts loaded")
	return nil
}

// LoadProof reads a serialized proof from path.
func LoadProof(path string) (groth16.Proof, error) {
	proof := groth16.NewProof(ecc.BN254)
	if err := readArtifact(path, proof); err != nil {
		return nil, err
	}
	return proof, nil
}

// LoadVerifyingKey reads a serialized verifying key from path.
func LoadVerifyingKey(path string) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := readArtifact(path, vk); err != nil {
		return nil, err
	}
	return vk, nil
}

func writeArtifact(path string, w io.WriterTo) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := w.WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readArtifact(path string, r io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := r.ReadFrom(f); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}
