package processing

import (
	"slices"

	"github.com/systemstart/paychain/pkg/api"
)

// TagFilter selects test steps by their tags.
type TagFilter struct {
	All     []string // step must carry every tag
	Any     []string // step must carry at least one tag, when set
	Exclude []string // step must carry none; wins over All and Any
}

// Empty reports whether the filter selects everything.
func (f TagFilter) Empty() bool {
	return len(f.All) == 0 && len(f.Any) == 0 && len(f.Exclude) == 0
}

// Match reports whether tags pass the filter.
func (f TagFilter) Match(tags []string) bool {
	for _, t := range f.Exclude {
		if slices.Contains(tags, t) {
			return false
		}
	}
	for _, t := range f.All {
		if !slices.Contains(tags, t) {
			return false
		}
	}
	if len(f.Any) == 0 {
		return true
	}
	return slices.ContainsFunc(f.Any, func(t string) bool { return slices.Contains(tags, t) })
}

// FilterSteps returns the steps matching f, keeping their order.
func FilterSteps(steps []api.TestStep, f TagFilter) []api.TestStep {
	if f.Empty() {
		return steps
	}
	var out []api.TestStep
	for _, s := range steps {
		if f.Match(s.Tags) {
			out = append(out, s)
		}
	}
	return out
}

// Tags lists every distinct tag used by steps, sorted, with its step count.
func Tags(steps []api.TestStep) ([]string, map[string]int) {
	counts := make(map[string]int)
	for _, s := range steps {
		for _, t := range s.Tags {
			counts[t]++
		}
	}
	names := make([]string, 0, len(counts))
	for t := range counts {
		names = append(names, t)
	}
	slices.Sort(names)
	return names, counts
}
