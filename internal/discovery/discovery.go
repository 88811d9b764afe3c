// Package discovery supplies the candidate server set for an update cycle,
// either from a local list file or from the Steam server directory.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"herald/internal/models"
)

// Provider yields the unordered candidate server set for one cycle.
type Provider interface {
	Servers(ctx context.Context) ([]models.ServerRef, error)
}

// File reads a static JSON array of {address, port} records.
type File struct {
	Path string
}

// Servers loads and decodes the server list file.
func (f *File) Servers(_ context.Context) ([]models.ServerRef, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read server list: %w", err)
	}

	var refs []models.ServerRef
	if err := json.Unmarshal(data, &refs); err != nil {
		return nil, fmt.Errorf("parse server list %s: %w", f.Path, err)
	}

	return refs, nil
}
