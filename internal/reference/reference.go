package reference

import (
	"fmt"
	"time"

	"conference-system/utils"
)

// DefaultPrefix is prepended to every generated payment reference.
const DefaultPrefix = "CONF"

// New generates an opaque transaction reference: prefix, millisecond
// timestamp and a random hex suffix. The value correlates an internal
// order with the gateway's transaction record.
func New(prefix string) (string, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	suffix, err := utils.GenerateCode(4)
	if err != nil {
		return "", fmt.Errorf("reference.New: %w", err)
	}

	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), suffix), nil
}
