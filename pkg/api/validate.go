package api

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ValidateSteps checks required fields and rejects duplicate (chain_id, step_order) pairs.
func ValidateSteps(steps []TestStep) error {
	type position struct {
		chain string
		order int
	}
	seen := make(map[position]int, len(steps))

	var errs []error
	for _, s := range steps {
		if s.ChainID == "" {
			errs = append(errs, fmt.Errorf("line %d: chain_id is required", s.Line))
			continue
		}
		if s.CallType == "" {
			errs = append(errs, fmt.Errorf("line %d: call_type is required", s.Line))
		}
		if s.TestID == "" {
			errs = append(errs, fmt.Errorf("line %d: test_id is required", s.Line))
		}

		p := position{s.ChainID, s.StepOrder}
		if prev, exists := seen[p]; exists {
			errs = append(errs, fmt.Errorf("line %d: duplicate step_order %d in chain %q (first defined at line %d)",
				s.Line, s.StepOrder, s.ChainID, prev))
			continue
		}
		seen[p] = s.Line
	}
	return errors.Join(errs...)
}

// SortSteps orders steps by chain id then step order, keeping input order for ties.
func SortSteps(steps []TestStep) {
	slices.SortStableFunc(steps, func(a, b TestStep) int {
		return cmp.Or(cmp.Compare(a.ChainID, b.ChainID), cmp.Compare(a.StepOrder, b.StepOrder))
	})
}

// GroupChains splits sorted steps into chains, in order of first appearance.
func GroupChains(steps []TestStep) []Chain {
	var chains []Chain
	byID := make(map[string]int)
	for _, s := range steps {
		i, ok := byID[s.ChainID]
		if !ok {
			i = len(chains)
			byID[s.ChainID] = i
			chains = append(chains, Chain{ID: s.ChainID})
		}
		chains[i].Steps = append(chains[i].Steps, s)
	}
	for i := range chains {
		slices.SortStableFunc(chains[i].Steps, func(a, b TestStep) int {
			return cmp.Compare(a.StepOrder, b.StepOrder)
		})
	}
	return chains
}

// DanglingReferences lists references from steps to keys missing in the tables.
func (t *Tables) DanglingReferences(steps []TestStep) []string {
	var out []string
	check := func(s TestStep, kind, ref string, ok bool) {
		if ref != "" && !ok {
			out = append(out, fmt.Sprintf("chain %s step %d: %s %q not configured", s.ChainID, s.StepOrder, kind, ref))
		}
	}
	for _, s := range steps {
		_, ok := t.Environments[s.Env]
		check(s, "environment", s.Env, ok)
		if s.Env != "" {
			_, ok = t.Merchant(s.Env, s.Merchant)
			check(s, "merchant", s.Merchant, ok)
		}
		_, ok = t.Cards[s.CardID]
		check(s, "card", s.CardID, ok)
		_, ok = t.Addresses[s.AddressRef]
		check(s, "address", s.AddressRef, ok)
		_, ok = t.ThreeDS[s.ThreeDSRef]
		check(s, "3-D Secure data", s.ThreeDSRef, ok)
		_, ok = t.CardOnFile[s.CardOnFileRef]
		check(s, "card-on-file data", s.CardOnFileRef, ok)
		_, ok = t.NetworkTokens[s.NetworkTokenRef]
		check(s, "network token", s.NetworkTokenRef, ok)
		_, ok = t.MerchantData[s.MerchantDataRef]
		check(s, "merchant data", s.MerchantDataRef, ok)
	}
	return out
}
