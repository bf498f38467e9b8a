// bundle.go - Persistent, append-only bundle of transfer-with-fee artifacts.
//
// The Bundle records every encoded artifact produced by a run, keyed by the
// SHA3-256 digest of its encoding, and is persisted as a single JSON file.

package main

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/crypto/sha3"

	"feeproof/internal/transferfee"
)

// ErrDuplicateArtifact is returned when an artifact is already in the bundle.
var ErrDuplicateArtifact = errors.New("duplicate artifact: digest already in bundle")

// BundleEntry is one encoded artifact.
type BundleEntry struct {
	Digest  string `json:"digest"`
	Variant string `json:"variant"`
	Data    string `json:"data"`
}

// Decode returns the artifact of e after checking its digest.
func (e *BundleEntry) Decode() (*transferfee.TransferWithFeeData, error) {
	raw, err := base64.StdEncoding.DecodeString(e.Data)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", e.Digest, err)
	}
	if digest(raw) != e.Digest {
		return nil, fmt.Errorf("entry %s: digest mismatch", e.Digest)
	}
	return transferfee.ParseTransferWithFeeData(raw)
}

// Bundle is an append-only list of artifacts. It is safe for concurrent use.
type Bundle struct {
	mu      sync.RWMutex
	entries []BundleEntry
	seen    map[string]struct{}
}

// NewBundle creates a new, empty bundle.
func NewBundle() *Bundle {
	return &Bundle{seen: make(map[string]struct{})}
}

func digest(raw []byte) string {
	sum := sha3.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Append encodes data and adds it to the bundle. It returns the digest, or
// ErrDuplicateArtifact if the same encoding is already present.
func (b *Bundle) Append(variant transferfee.Variant, data *transferfee.TransferWithFeeData) (string, error) {
	raw, err := data.MarshalBinary()
	if err != nil {
		return "", err
	}
	d := digest(raw)

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.seen[d]; ok {
		return "", ErrDuplicateArtifact
	}
	b.seen[d] = struct{}{}
	b.entries = append(b.entries, BundleEntry{
		Digest:  d,
		Variant: variant.String(),
		Data:    base64.StdEncoding.EncodeToString(raw),
	})
	return d, nil
}

// Has returns true if an artifact with the digest is in the bundle.
func (b *Bundle) Has(d string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.seen[d]
	return ok
}

// Entries returns a copy of all entries in append order.
func (b *Bundle) Entries() []BundleEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]BundleEntry(nil), b.entries...)
}

func (b *Bundle) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

type bundleFile struct {
	Entries []BundleEntry `json:"entries"`
}

// SaveToFile saves the bundle to a JSON file, overwriting it if it exists.
func (b *Bundle) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(bundleFile{Entries: b.Entries()})
}

// LoadBundleFromFile loads a bundle from a JSON file. Duplicate digests are
// rejected.
func LoadBundleFromFile(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var file bundleFile
	if err := json.NewDecoder(f).Decode(&file); err != nil {
		return nil, err
	}
	b := NewBundle()
	for _, e := range file.Entries {
		if _, ok := b.seen[e.Digest]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateArtifact, e.Digest)
		}
		b.seen[e.Digest] = struct{}{}
		b.entries = append(b.entries, e)
	}
	return b, nil
}
