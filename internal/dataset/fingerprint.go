package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/wonny/hivdash/internal/contracts"
)

// Fingerprint returns a short content hash of the input file.
// Cached artefacts derived from the file are keyed by it.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %v: %w", path, err, contracts.ErrIO)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %v: %w", path, err, contracts.ErrIO)
	}
	return hex.EncodeToString(h.Sum(nil))[:12], nil
}
