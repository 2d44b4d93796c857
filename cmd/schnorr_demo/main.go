// cmd/schnorr_demo/main.go
//
// End-to-end driver: generate a keypair, sign a message, export the
// witness input JSON, then run the full Groth16 pipeline and write all
// artifacts.
package main

import (
	"crypto/rand"
	"flag"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"zkschnorr/pipeline"
	"zkschnorr/schnorr"
	"zkschnorr/witness"
)

func main() {
	var (
		message = flag.String("message", "hello world", "message to sign")
		outDir  = flag.String("out", "build", "artifact output directory")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().
		Level(zerolog.InfoLevel)
	if *verbose {
		log = log.Level(zerolog.DebugLevel)
	}

	priv, err := schnorr.GenerateKey(rand.Reader)
	if err != nil {
		log.Fatal().Err(err).Msg("keygen failed")
	}
	log.Info().
		Str("pkX", priv.A.X.String()).
		Str("pkY", priv.A.Y.String()).
		Msg("generated keypair")

	rec, err := witness.Build(priv, []byte(*message))
	if err != nil {
		log.Fatal().Err(err).Msg("witness build failed")
	}
	log.Info().
		Str("s", rec.S.String()).
		Str("e", rec.E.String()).
		Str("msgHash", rec.MsgHash.String()).
		Msgf("signed %q", *message)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("creating output directory")
	}
	inputPath := filepath.Join(*outDir, pipeline.FileWitnessInput)
	if err := rec.WriteFile(inputPath); err != nil {
		log.Fatal().Err(err).Msg("writing witness input")
	}
	log.Info().Str("path", inputPath).Msg("witness input exported")

	p := pipeline.New(log)
	if err := p.Run(rec); err != nil {
		log.Fatal().Err(err).Msg("pipeline failed")
	}
	if err := p.SaveArtifacts(*outDir); err != nil {
		log.Fatal().Err(err).Msg("saving artifacts")
	}
	log.Info().Str("dir", *outDir).Msg("proof verified, artifacts written")
}
