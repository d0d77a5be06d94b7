package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/mlops-seed/internal/stageconfig"
)

// DomainStageConfig separates stage configuration hashes from any other hash
// computed over the same bytes.
const DomainStageConfig = "seed/stage-config/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StageConfig returns the content hash of cfg. Key order does not matter and a
// nil map hashes like an empty one.
func StageConfig(cfg *stageconfig.StageConfig) (string, error) {
	params := cfg.Parameters
	if params == nil {
		params = map[string]string{}
	}
	tags := cfg.Tags
	if tags == nil {
		tags = map[string]string{}
	}

	canonical, err := MarshalCanonical(map[string]any{
		"Parameters": params,
		"Tags":       tags,
	})
	if err != nil {
		return "", fmt.Errorf("fingerprint stage config: %w", err)
	}
	return hashWithDomain(DomainStageConfig, canonical), nil
}
