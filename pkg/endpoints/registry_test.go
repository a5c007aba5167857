package endpoints

import (
	"errors"
	"testing"

	"github.com/systemstart/paychain/pkg/api"
)

func TestDefault(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(r.CallTypes()); got != 15 {
		t.Fatalf("expected 15 call types, got %d: %v", got, r.CallTypes())
	}

	tests := []struct {
		callType string
		requires []string
		provides []string
		dcc      bool
	}{
		{api.CallCreatePayment, nil, []string{api.KeyPaymentID, api.KeyOperationID, api.KeySchemeTransactionID}, true},
		{api.CallCapturePayment, []string{api.KeyPaymentID}, []string{api.KeyOperationID}, true},
		{api.CallRefundPayment, []string{api.KeyPaymentID}, []string{api.KeyRefundID, api.KeyOperationID}, true},
		{api.CallGetPayment, []string{api.KeyPaymentID}, nil, false},
		{api.CallCaptureRefund, []string{api.KeyRefundID}, []string{api.KeyOperationID}, false},
		{api.CallTechnicalReversal, []string{api.KeyOperationID}, []string{api.KeyOperationID}, false},
		{api.CallGetDCCRate, nil, []string{api.KeyDCCRateReferenceID}, true},
		{api.CallPing, nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.callType, func(t *testing.T) {
			e, err := r.Lookup(tt.callType)
			if err != nil {
				t.Fatalf("lookup failed: %v", err)
			}
			if !equal(e.RequiredKeys(), tt.requires) {
				t.Errorf("requires = %v, want %v", e.RequiredKeys(), tt.requires)
			}
			if !equal(e.ProvidedKeys(), tt.provides) {
				t.Errorf("provides = %v, want %v", e.ProvidedKeys(), tt.provides)
			}
			if e.SupportsDCC() != tt.dcc {
				t.Errorf("SupportsDCC = %v, want %v", e.SupportsDCC(), tt.dcc)
			}
		})
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(ping()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := r.Register(ping())
	var cfgErr *api.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestRegistry_UnknownCallType(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("bogus_call")

	var unknown *api.UnknownCallTypeError
	if !errors.As(err, &unknown) || unknown.CallType != "bogus_call" {
		t.Fatalf("expected UnknownCallTypeError, got %v", err)
	}
}
