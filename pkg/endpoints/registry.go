package endpoints

import (
	"fmt"
	"slices"

	"github.com/systemstart/paychain/pkg/api"
)

// Registry maps call types to their handlers.
type Registry struct {
	endpoints map[string]Endpoint
}

func NewRegistry() *Registry {
	return &Registry{endpoints: make(map[string]Endpoint)}
}

// Register adds e. Registering a call type twice is a configuration error.
func (r *Registry) Register(e Endpoint) error {
	if _, exists := r.endpoints[e.CallType()]; exists {
		return &api.ConfigurationError{Err: fmt.Errorf("duplicate handler for call type %q", e.CallType())}
	}
	r.endpoints[e.CallType()] = e
	return nil
}

// Lookup returns the handler for callType or an *api.UnknownCallTypeError.
func (r *Registry) Lookup(callType string) (Endpoint, error) {
	e, ok := r.endpoints[callType]
	if !ok {
		return nil, &api.UnknownCallTypeError{CallType: callType}
	}
	return e, nil
}

// CallTypes lists the registered call types, sorted.
func (r *Registry) CallTypes() []string {
	out := make([]string, 0, len(r.endpoints))
	for k := range r.endpoints {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Default returns a registry with every built-in call type.
func Default() (*Registry, error) {
	r := NewRegistry()
	for _, e := range builtins() {
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func builtins() []Endpoint {
	return []Endpoint{
		createPayment(),
		incrementPayment(),
		capturePayment(),
		refundPayment(),
		reverseAuthorization(),
		getPayment(),
		standaloneRefund(),
		captureRefund(),
		reverseRefundAuthorization(),
		getRefund(),
		technicalReversal(),
		accountVerification(),
		balanceInquiry(),
		dccRate(),
		ping(),
	}
}
