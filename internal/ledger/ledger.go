// Package ledger persists the mapping from logical node names to cloud
// identity and IP addresses across orchestrator runs.
//
// The infra stage always writes a fresh ledger reflecting current cloud
// reality; it is never merged with a previous on-disk copy. The app
// stage reads it and live-resolves anything missing, so a stale or
// hand-edited ledger degrades to extra API calls, not failure.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Version is the current ledger schema version.
const Version = "1"

// NodeRecord is the persisted state for one deployed node.
type NodeRecord struct {
	NodeName   string `json:"node_name"`
	Team       string `json:"team"`
	PeerID     string `json:"peer_id"`
	Address    string `json:"address,omitempty"`
	ExternalIP string `json:"external_ip,omitempty"`
	InternalIP string `json:"internal_ip,omitempty"`
}

// Metadata records where and when the ledger was produced.
type Metadata struct {
	ProviderScope string    `json:"provider_scope"`
	GeneratedAt   time.Time `json:"generated_at"`
	Version       string    `json:"version"`
}

// Ledger is the full persisted deployment state.
type Ledger struct {
	Metadata   Metadata              `json:"metadata"`
	BootNodes  map[string]NodeRecord `json:"boot_nodes"`
	Validators map[string]NodeRecord `json:"validators"`
}

// New returns an empty ledger stamped for the given provider scope.
func New(providerScope string) *Ledger {
	return &Ledger{
		Metadata: Metadata{
			ProviderScope: providerScope,
			GeneratedAt:   time.Now().UTC(),
			Version:       Version,
		},
		BootNodes:  make(map[string]NodeRecord),
		Validators: make(map[string]NodeRecord),
	}
}

// Record returns the record for a node name, searching validators then
// boot nodes.
func (l *Ledger) Record(name string) (NodeRecord, bool) {
	if rec, ok := l.Validators[name]; ok {
		return rec, true
	}
	rec, ok := l.BootNodes[name]
	return rec, ok
}

// Store reads and writes the ledger file.
type Store struct {
	Path string
}

// Save writes the ledger as indented JSON, replacing any previous file.
func (s *Store) Save(l *Ledger) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ledger %s: %w", s.Path, err)
	}
	return nil
}

// Load reads the ledger file. A missing file is not an error: it returns
// an empty ledger so the app stage falls back to live resolution.
func (s *Store) Load() (*Ledger, error) {
	data, err := os.ReadFile(s.Path) // #nosec G304
	if err != nil {
		if os.IsNotExist(err) {
			return New(""), nil
		}
		return nil, fmt.Errorf("failed to read ledger %s: %w", s.Path, err)
	}

	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse ledger %s: %w", s.Path, err)
	}
	if l.BootNodes == nil {
		l.BootNodes = make(map[string]NodeRecord)
	}
	if l.Validators == nil {
		l.Validators = make(map[string]NodeRecord)
	}
	return &l, nil
}
