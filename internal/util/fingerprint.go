package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/elcharitas/mjolnir/internal/model"
)

// Fingerprint computes a stable hash identifying an issue across runs.
func Fingerprint(is model.Issue) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%s", is.Severity, is.Line, is.Message)
	return hex.EncodeToString(h.Sum(nil))
}
