package endpoints

import (
	"net/http"

	"github.com/systemstart/paychain/pkg/acquiring"
	"github.com/systemstart/paychain/pkg/api"
)

func paymentPath(in Input, suffix string) func(acquiring.Target) string {
	id := in.Context[api.KeyPaymentID]
	return func(t acquiring.Target) string { return t.PaymentPath(id) + suffix }
}

func createPayment() Endpoint {
	return &descriptor{
		callType: api.CallCreatePayment,
		provides: []string{api.KeyPaymentID, api.KeyOperationID, api.KeySchemeTransactionID},
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
			body := acquiring.PaymentRequest{
				Operation:                 op,
				Amount:                    in.DCC.TransactionAmount(in.Step),
				AuthorizationType:         in.Step.AuthorizationType,
				CardPaymentData:           cardPaymentData(in),
				MerchantData:              merchantData(in),
				References:                refs,
				DynamicCurrencyConversion: in.DCC.Data(in.Step),
			}
			return &Request{Method: http.MethodPost, Path: acquiring.Target.PaymentsPath, Body: body, OperationID: op.OperationID}, nil
		},
		extract: func(req *Request, resp *acquiring.Response) map[string]string {
			return map[string]string{
				api.KeyPaymentID:           resp.String("paymentId"),
				api.KeyOperationID:         req.OperationID,
				api.KeySchemeTransactionID: resp.First("schemeTransactionId", "references.schemeTransactionId"),
			}
		},
	}
}

func incrementPayment() Endpoint {
	return &descriptor{
		callType: api.CallIncrementPayment,
		requires: []string{api.KeyPaymentID},
		provides: []string{api.KeyOperationID},
		dcc:      true,
		chaining: true,
		build: func(in Input) (*Request, error) {
			op, err := operation(in)
			if err != nil {
				return nil, err
			}
			body := acquiring.IncrementRequest{
				Operation:                 op,
				IncrementAmount:           in.DCC.TransactionAmount(in.Step),
				DynamicCurrencyConversion: in.DCC.Data(in.Step),
			}
			return &Request{Method: http.MethodPost, Path: paymentPath(in, "/increments"), Body: body, OperationID: op.OperationID}, nil
		},
		extract: operationOnly,
	}
}

func capturePayment() Endpoint {
	return &descriptor{
		callType: api.CallCapturePayment,
		requires: []string{api.KeyPaymentID},
		provides: []string{api.KeyOperationID},
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
			body := acquiring.CaptureRequest{
				Operation:                 op,
				Amount:                    in.DCC.TransactionAmount(in.Step),
				IsFinal:                   in.Step.IsFinal,
				CaptureSequenceNumber:     in.Step.CaptureSequenceNumber,
				References:                refs,
				DynamicCurrencyConversion: in.DCC.Data(in.Step),
			}
			return &Request{Method: http.MethodPost, Path: paymentPath(in, "/captures"), Body: body, OperationID: op.OperationID}, nil
		},
		extract: operationOnly,
	}
}

func reverseAuthorization() Endpoint {
	return &descriptor{
		callType: api.CallReverseAuthorization,
		requires: []string{api.KeyPaymentID},
		provides: []string{api.KeyOperationID},
		dcc:      true,
		chaining: true,
		build: func(in Input) (*Request, error) {
			op, err := operation(in)
			if err != nil {
				return nil, err
			}
			body := acquiring.ReversalRequest{
				Operation:                 op,
				ReversalAmount:            in.DCC.TransactionAmount(in.Step),
				DynamicCurrencyConversion: in.DCC.Data(in.Step),
			}
			return &Request{Method: http.MethodPost, Path: paymentPath(in, "/authorization-reversals"), Body: body, OperationID: op.OperationID}, nil
		},
		extract: operationOnly,
	}
}

func getPayment() Endpoint {
	return &descriptor{
		callType: api.CallGetPayment,
		requires: []string{api.KeyPaymentID},
		chaining: true,
		build: func(in Input) (*Request, error) {
			return &Request{Method: http.MethodGet, Path: paymentPath(in, "")}, nil
		},
	}
}

func refundPayment() Endpoint {
	return &descriptor{
		callType: api.CallRefundPayment,
		requires: []string{api.KeyPaymentID},
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
				References:                refs,
				DynamicCurrencyConversion: in.DCC.Data(in.Step),
			}
			return &Request{Method: http.MethodPost, Path: paymentPath(in, "/refunds"), Body: body, OperationID: op.OperationID}, nil
		},
		extract: func(req *Request, resp *acquiring.Response) map[string]string {
			return map[string]string{
				api.KeyRefundID:    resp.First("refund.refundId", "refundId"),
				api.KeyOperationID: req.OperationID,
			}
		},
	}
}
