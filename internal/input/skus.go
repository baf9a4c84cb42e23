// Package input loads the run's SKU and store lists. Malformed records are a
// configuration error: the run aborts before any fetch instead of silently
// skipping entries.
package input

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/shelfwatch/shelfwatch/internal/types"
)

// LoadSKUs reads one SKU per line, preserving order. Blank lines and lines
// starting with '#' are skipped. Duplicates are kept as-is; de-duplication is
// not this layer's job.
func LoadSKUs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &types.ConfigError{Source: path, Err: err}
	}
	defer f.Close()

	var skus []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		skus = append(skus, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, &types.ConfigError{Source: path, Err: err}
	}

	if len(skus) == 0 {
		return nil, &types.ConfigError{Source: path, Err: fmt.Errorf("no SKUs listed")}
	}
	return skus, nil
}
