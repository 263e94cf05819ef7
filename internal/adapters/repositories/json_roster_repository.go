package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"nearby-pro-service/internal/domain"
	"os"
	"strings"
)

// JSONRosterRepository serves a roster loaded from a JSON array file.
// The file is read on every call so edits are picked up without restart.
type JSONRosterRepository struct {
	Path string
}

func NewJSONRosterRepository(path string) *JSONRosterRepository {
	return &JSONRosterRepository{Path: path}
}

func (r *JSONRosterRepository) ListProfessionals(ctx context.Context) ([]domain.Professional, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadRosterFile(r.Path)
}

// LoadRosterFile reads and validates a roster file. Every entry needs a
// unique non-empty id and a name; the address may be empty.
func LoadRosterFile(path string) ([]domain.Professional, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %q: %w", path, err)
	}
	return ParseRoster(b)
}

func ParseRoster(b []byte) ([]domain.Professional, error) {
	var data []domain.Professional
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("parse roster json: %w", err)
	}

	seen := make(map[string]struct{}, len(data))
	out := make([]domain.Professional, 0, len(data))
	for i, p := range data {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, fmt.Errorf("roster entry %d: id cannot be empty", i+1)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("roster entry %d: duplicate id %q", i+1, p.ID)
		}
		seen[p.ID] = struct{}{}

		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, fmt.Errorf("roster entry %d: name cannot be empty", i+1)
		}
		p.RawAddress = strings.TrimSpace(p.RawAddress)
		out = append(out, p)
	}

	return out, nil
}

func encodeAttributes(attrs map[string]string) ([]byte, error) {
	if len(attrs) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(attrs)
}
