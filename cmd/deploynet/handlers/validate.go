package handlers

import (
	"fmt"
	"log"

	"github.com/eqlabs/starknet-consensus-interop/internal/descriptor"
)

// Validate checks every team's validator descriptors and keypair files
// and reports all problems found. Any problem makes the command fail.
func Validate(dir string) error {
	problems, err := descriptor.Validate(dir)
	if err != nil {
		return err
	}
	if len(problems) > 0 {
		for _, p := range problems {
			log.Printf("problem: %s", p)
		}
		return fmt.Errorf("validation failed with %d problem(s)", len(problems))
	}

	log.Printf("All validator descriptors are consistent")
	return nil
}
