package endpoints

import (
	"context"
	"log/slog"
	"time"

	"github.com/systemstart/paychain/pkg/acquiring"
	"github.com/systemstart/paychain/pkg/api"
	"github.com/systemstart/paychain/pkg/dcc"
)

// Input provides everything a request builder may read.
type Input struct {
	Step    api.TestStep
	Tables  *api.Tables
	Context map[string]string // dependency context of the chain
	DCC     *dcc.Context      // nil unless this step is converted
	Refs    *References
	Logger  *slog.Logger

	// TargetCurrency and TransactionType parameterise a rate inquiry.
	TargetCurrency  string
	TransactionType string
}

func (in Input) logger() *slog.Logger {
	if in.Logger != nil {
		return in.Logger
	}
	return slog.Default()
}

// Request is a built API call.
type Request struct {
	Method      string
	Path        func(acquiring.Target) string
	Body        any
	OperationID string
}

// Endpoint is the interface every call type handler implements.
type Endpoint interface {
	CallType() string
	BuildRequest(in Input) (*Request, error)
	Invoke(ctx context.Context, caller acquiring.Caller, target acquiring.Target, req *Request) (*acquiring.Response, error)
	// Extract maps response fields to provided keys. Empty values are left out.
	Extract(req *Request, resp *acquiring.Response) map[string]string
	RequiredKeys() []string
	ProvidedKeys() []string
	SupportsDCC() bool
	SupportsChaining() bool
}

type descriptor struct {
	callType string
	requires []string
	provides []string
	dcc      bool
	chaining bool
	build    func(in Input) (*Request, error)
	extract  func(req *Request, resp *acquiring.Response) map[string]string
}

func (d *descriptor) CallType() string { return d.callType }
func (d *descriptor) RequiredKeys() []string { return d.requires }
func (d *descriptor) ProvidedKeys() []string { return d.provides }
func (d *descriptor) SupportsDCC() bool { return d.dcc }
func (d *descriptor) SupportsChaining() bool { return d.chaining }

func (d *descriptor) BuildRequest(in Input) (*Request, error) {
	return d.build(in)
}

func (d *descriptor) Invoke(ctx context.Context, caller acquiring.Caller, target acquiring.Target, req *Request) (*acquiring.Response, error) {
	return caller.Do(ctx, req.Method, req.Path(target), req.Body)
}

func (d *descriptor) Extract(req *Request, resp *acquiring.Response) map[string]string {
	if d.extract == nil {
		return nil
	}
	out := d.extract(req, resp)
	for k, v := range out {
		if v == "" {
			delete(out, k)
		}
	}
	return out
}

// operationOnly extracts the operation id the request was sent with.
func operationOnly(req *Request, _ *acquiring.Response) map[string]string {
	return map[string]string{api.KeyOperationID: req.OperationID}
}

var now = time.Now

func timestamp() string {
	return now().UTC().Truncate(time.Second).Format(time.RFC3339)
}

func operation(in Input) (acquiring.Operation, error) {
	id, err := in.Refs.OperationID(in.Step.TestID)
	if err != nil {
		return acquiring.Operation{}, err
	}
	return acquiring.Operation{OperationID: id, TransactionTimestamp: timestamp()}, nil
}

func references(in Input) (*acquiring.PaymentReferences, error) {
	ref, err := in.Refs.MerchantReference(in.Step.TestID)
	if err != nil {
		return nil, err
	}
	return &acquiring.PaymentReferences{MerchantReference: ref, DynamicDescriptor: in.Step.DynamicDescriptor}, nil
}
