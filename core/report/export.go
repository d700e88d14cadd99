package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"staff-sync/core/n2f"
)

// Export writes the run's outcomes as JSON lines under cfg.Dir, one file
// per run named by a fresh run identifier. It returns the file path.
func Export(cfg Config, outcomes []n2f.Outcome) (string, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	runID := uuid.New().String()
	path := filepath.Join(cfg.Dir, "run-"+runID+".jsonl")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, o := range outcomes {
		if err := enc.Encode(o); err != nil {
			return "", fmt.Errorf("failed to encode outcome: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush report file: %w", err)
	}
	return path, nil
}
