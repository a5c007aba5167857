package endpoints

import (
	"net/http"

	"github.com/systemstart/paychain/pkg/acquiring"
	"github.com/systemstart/paychain/pkg/api"
)

func refundPath(in Input, suffix string) func(acquiring.Target) string {
	id := in.Context[api.KeyRefundID]
	return func(t acquiring.Target) string { return t.RefundPath(id) + suffix }
}

func standaloneRefund() Endpoint {
	return &descriptor{
		callType: api.CallStandaloneRefund,
		provides: []string{api.KeyRefundID, api.KeyOperationID},
		dcc:      true,
		chaining: true,
		build: func(in Input) (*Request, error) {
			op, err := operation(in)
			if err != nil {
				return nil, err
			}
			refs, err := references(in)
			if err != nil {
				return nil, err
			}
			body := acquiring.RefundRequest{
				Operation:                 op,
				Amount:                    in.DCC.TransactionAmount(in.Step),
				CardPaymentData:           cardPaymentData(in),
				MerchantData:              merchantData(in),
				References:                refs,
				DynamicCurrencyConversion: in.DCC.Data(in.Step),
			}
			return &Request{Method: http.MethodPost, Path: acquiring.Target.RefundsPath, Body: body, OperationID: op.OperationID}, nil
		},
		extract: func(req *Request, resp *acquiring.Response) map[string]string {
			return map[string]string{
				api.KeyRefundID:    resp.First("refundId", "refund.refundId"),
				api.KeyOperationID: req.OperationID,
			}
		},
	}
}

func captureRefund() Endpoint {
	return &descriptor{
		callType: api.CallCaptureRefund,
		requires: []string{api.KeyRefundID},
		provides: []string{api.KeyOperationID},
		chaining: true,
		build: func(in Input) (*Request, error) {
			op, err := operation(in)
			if err != nil {
				return nil, err
			}
			body := acquiring.CaptureRequest{Operation: op}
			return &Request{Method: http.MethodPost, Path: refundPath(in, "/captures"), Body: body, OperationID: op.OperationID}, nil
		},
		extract: operationOnly,
	}
}

func reverseRefundAuthorization() Endpoint {
	return &descriptor{
		callType: api.CallReverseRefundAuthorization,
		requires: []string{api.KeyRefundID},
		provides: []string{api.KeyOperationID},
		chaining: true,
		build: func(in Input) (*Request, error) {
			op, err := operation(in)
			if err != nil {
				return nil, err
			}
			body := acquiring.ReversalRequest{Operation: op}
			return &Request{Method: http.MethodPost, Path: refundPath(in, "/authorization-reversals"), Body: body, OperationID: op.OperationID}, nil
		},
		extract: operationOnly,
	}
}

func getRefund() Endpoint {
	return &descriptor{
		callType: api.CallGetRefund,
		requires: []string{api.KeyRefundID},
		chaining: true,
		build: func(in Input) (*Request, error) {
			return &Request{Method: http.MethodGet, Path: refundPath(in, "")}, nil
		},
	}
}
