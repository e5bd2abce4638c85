package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sumitdevelops/codered/config"
)

// With rotation enabled, every configured file output is rotated under
// its own path; two outputs must never collapse into one file.
func TestRotatedOutputsKeepTheirPaths(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "engine.log")
	second := filepath.Join(dir, "audit.log")

	logger, err := SetupLogger(config.LogConfig{
		Level:   "info",
		Format:  "json",
		Outputs: []string{first, second},
		Rotation: config.RotationConfig{
			Enable:     true,
			MaxSizeMB:  1,
			MaxBackups: 1,
			MaxAgeDays: 1,
		},
	})
	if err != nil {
		t.Fatalf("setup logger: %v", err)
	}

	logger.Info("rotation output check")
	logger.Sync()

	for _, path := range []string{first, second} {
		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected log file at %s: %v", path, err)
		}
		if !strings.Contains(string(raw), "rotation output check") {
			t.Errorf("log line missing from %s: %s", path, raw)
		}
	}
}

func TestPlainFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.log")

	logger, err := SetupLogger(config.LogConfig{
		Level:   "debug",
		Format:  "console",
		Outputs: []string{path},
	})
	if err != nil {
		t.Fatalf("setup logger: %v", err)
	}

	logger.Debug("plain file check")
	logger.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file at %s: %v", path, err)
	}
	if !strings.Contains(string(raw), "plain file check") {
		t.Errorf("log line missing: %s", raw)
	}
}
