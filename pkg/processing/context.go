package processing

import (
	"fmt"
	"maps"
	"os"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// LoadContextFile reads a flat YAML mapping used to seed the dependency
// context of every chain, e.g. a payment_id created outside the run.
func LoadContextFile(filename string) (map[string]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading context file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing context file: %w", err)
	}

	ctx := make(map[string]string, len(raw))
	for k, v := range raw {
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("context key %q: %w", k, err)
		}
		ctx[k] = s
	}
	return ctx, nil
}

// MergeContext performs a shallow merge of local over global into a new map.
// Local keys override global keys.
func MergeContext[V any](global, local map[string]V) map[string]V {
	merged := make(map[string]V, len(global)+len(local))
	maps.Copy(merged, global)
	maps.Copy(merged, local)
	return merged
}
