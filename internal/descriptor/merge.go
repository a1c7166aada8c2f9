package descriptor

import (
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Merge collects every team's validator_0x*.json under baseDir and writes
// them as one JSON array to outputFile, sorted by numeric address.
// Unparseable files are skipped with a warning rather than aborting the
// merge, matching how teams iterate on their descriptors.
func Merge(baseDir, outputFile string) (int, error) {
	teams, err := os.ReadDir(baseDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", baseDir, err)
	}

	merged := []Node{}
	for _, team := range teams {
		if !team.IsDir() {
			continue
		}
		files, err := filepath.Glob(filepath.Join(baseDir, team.Name(), "validator_0x*.json"))
		if err != nil {
			return 0, err
		}
		for _, file := range files {
			data, err := os.ReadFile(file) // #nosec G304
			if err != nil {
				log.Printf("skipping %s: %v", file, err)
				continue
			}
			var node Node
			if err := json.Unmarshal(data, &node); err != nil {
				log.Printf("skipping %s: %v", file, err)
				continue
			}
			merged = append(merged, node)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return addressValue(merged[i].Address).Cmp(addressValue(merged[j].Address)) < 0
	})

	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", outputFile, err)
	}
	return len(merged), nil
}

// addressValue interprets the address as an unbounded hex integer.
// Starknet addresses are felts and do not fit in 64 bits.
func addressValue(address string) *big.Int {
	v, ok := new(big.Int).SetString(strings.TrimPrefix(address, "0x"), 16)
	if !ok {
		return new(big.Int)
	}
	return v
}
