// Package ingest loads extracted report artifacts into the normalized
// store. Each stage reads one or more artifact files, resolves project
// names through the staged matcher, and get-or-creates rows keyed by
// natural keys, writing one lineage row per created record when the
// source report is registered.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// loadArtifact reads and decodes one extracted artifact file. Missing and
// malformed files are both reported as errors; callers treat either as
// "no data for this stage" and continue the batch.
func loadArtifact(dir, filename string, out interface{}) error {
	path := filepath.Join(dir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read artifact %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse artifact %s: %w", filename, err)
	}
	return nil
}
