package input

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shelfwatch/shelfwatch/internal/types"
)

// Store identifies one retail location to sweep.
type Store struct {
	ID   string `json:"store_id"`
	Slug string `json:"store_slug"`
	Name string `json:"name,omitempty"`
}

// storeFile is the on-disk shape of the store list.
type storeFile struct {
	Stores []Store `json:"stores"`
}

// LoadStores reads the store list. Every entry must carry a non-empty
// store_id and store_slug; a single malformed entry rejects the whole run.
func LoadStores(path string) ([]Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.ConfigError{Source: path, Err: err}
	}

	var file storeFile
	if err := json.Unmarshal(b, &file); err != nil {
		return nil, &types.ConfigError{Source: path, Err: fmt.Errorf("decode store list: %w", err)}
	}
	if len(file.Stores) == 0 {
		return nil, &types.ConfigError{Source: path, Err: fmt.Errorf("no stores listed")}
	}

	for i := range file.Stores {
		s := &file.Stores[i]
		s.ID = strings.TrimSpace(s.ID)
		s.Slug = strings.TrimSpace(s.Slug)
		if s.ID == "" || s.Slug == "" {
			return nil, &types.ConfigError{
				Source: path,
				Err:    fmt.Errorf("store entry %d: store_id and store_slug are required", i),
			}
		}
	}
	return file.Stores, nil
}
