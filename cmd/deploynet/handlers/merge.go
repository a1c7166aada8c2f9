package handlers

import (
	"log"

	"github.com/eqlabs/starknet-consensus-interop/internal/descriptor"
)

// Merge collects every team's validator descriptors into the merged
// network-config file consumed by deploy and compose.
func Merge(dir, output string) error {
	count, err := descriptor.Merge(dir, output)
	if err != nil {
		return err
	}
	log.Printf("Merged %d validator(s) into %s", count, output)
	return nil
}
