package descriptor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	hexAddressRe = regexp.MustCompile(`^0x[0-9a-fA-F]+$`)
	peerIDRe     = regexp.MustCompile(`^12D3KooW[1-9A-HJ-NP-Za-km-z]{40,}$`)
	filenameRe   = regexp.MustCompile(`^validator_0x[0-9a-fA-F]+\.json$`)
)

type keypair struct {
	PrivateKey string `json:"private_key"`
	PeerID     string `json:"peer_id"`
}

// Validate checks every validator descriptor and its keypair file under
// baseDir and returns the full list of problems found. An empty slice
// means the tree is consistent.
func Validate(baseDir string) ([]string, error) {
	teams, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", baseDir, err)
	}

	var errs []string
	for _, team := range teams {
		if !team.IsDir() {
			continue
		}
		teamDir := filepath.Join(baseDir, team.Name())
		files, err := filepath.Glob(filepath.Join(teamDir, "validator_0x*.json"))
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			name := filepath.Base(file)
			if !filenameRe.MatchString(name) {
				errs = append(errs, fmt.Sprintf("%s: filename must match 'validator_0xNNNN.json'", file))
				continue
			}
			address := strings.TrimSuffix(strings.TrimPrefix(name, "validator_"), ".json")
			keypairFile := filepath.Join(teamDir, "id_"+address+".json")
			if _, err := os.Stat(keypairFile); err != nil {
				errs = append(errs, fmt.Sprintf("missing keypair file: %s", keypairFile))
				continue
			}
			errs = append(errs, validateEntry(file, keypairFile)...)
		}
	}
	return errs, nil
}

func validateEntry(metaPath, keypairPath string) []string {
	var errs []string

	data, err := os.ReadFile(metaPath) // #nosec G304
	if err != nil {
		return []string{fmt.Sprintf("failed to read %s: %v", metaPath, err)}
	}
	var node Node
	if err := json.Unmarshal(data, &node); err != nil {
		return []string{fmt.Sprintf("failed to parse %s: %v", metaPath, err)}
	}

	if node.Address == "" || !hexAddressRe.MatchString(node.Address) {
		errs = append(errs, fmt.Sprintf("%s: 'address' is missing or not a valid hex string (e.g. 0x1000)", metaPath))
	}
	if node.PeerID == "" || !peerIDRe.MatchString(node.PeerID) {
		errs = append(errs, fmt.Sprintf("%s: 'peer_id' is missing or not a valid libp2p base58 string", metaPath))
	}
	if len(node.ListenAddresses) == 0 {
		errs = append(errs, fmt.Sprintf("%s: 'listen_addresses' must be a non-empty list", metaPath))
	}
	for _, addr := range node.ListenAddresses {
		if !strings.HasPrefix(addr, "/") {
			errs = append(errs, fmt.Sprintf("%s: invalid listen address format: %s", metaPath, addr))
		}
	}

	kpData, err := os.ReadFile(keypairPath) // #nosec G304
	if err != nil {
		return append(errs, fmt.Sprintf("failed to read %s: %v", keypairPath, err))
	}
	var kp keypair
	if err := json.Unmarshal(kpData, &kp); err != nil {
		return append(errs, fmt.Sprintf("failed to parse %s: %v", keypairPath, err))
	}
	if kp.PrivateKey == "" {
		errs = append(errs, fmt.Sprintf("%s: missing 'private_key'", keypairPath))
	}
	if kp.PeerID == "" {
		errs = append(errs, fmt.Sprintf("%s: missing 'peer_id'", keypairPath))
	}
	if kp.PeerID != "" && node.PeerID != kp.PeerID {
		errs = append(errs, fmt.Sprintf("%s and %s have mismatched peer_id", metaPath, keypairPath))
	}
	return errs
}
