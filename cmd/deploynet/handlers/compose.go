package handlers

import (
	"fmt"
	"log"

	"github.com/eqlabs/starknet-consensus-interop/internal/compose"
	"github.com/eqlabs/starknet-consensus-interop/internal/config"
	"github.com/eqlabs/starknet-consensus-interop/internal/descriptor"
)

// Compose renders the merged validator set into a docker-compose file
// for local runs. It needs no cloud credentials.
func Compose(outputPath string) error {
	cfg := config.Defaults()

	validators, err := descriptor.LoadValidators(cfg.ValidatorsFile)
	if err != nil {
		return err
	}
	if len(validators) == 0 {
		return fmt.Errorf("no validators found in %s", cfg.ValidatorsFile)
	}

	file, err := compose.Generate(cfg, validators)
	if err != nil {
		return err
	}
	if err := compose.Write(file, outputPath); err != nil {
		return err
	}

	log.Printf("Generated %s with %d service(s)", outputPath, len(file.Services))
	return nil
}
