package kafkaconnect

import (
	"fmt"
	"strings"
)

// ParseFlatConfig parses the newline-joined "key=value" text
// internal/compiler.RenderFlatConfig produces back into a map, the shape
// the Kafka Connect REST API's JSON config body expects.
func ParseFlatConfig(flat string) (map[string]string, error) {
	cfg := make(map[string]string)
	if flat == "" {
		return cfg, nil
	}
	for _, line := range strings.Split(flat, "\n") {
		if line == "" {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("malformed config line %q", line)
		}
		cfg[k] = v
	}
	return cfg, nil
}
