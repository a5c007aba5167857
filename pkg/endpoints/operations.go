package endpoints

import (
	"net/http"

	"github.com/systemstart/paychain/pkg/acquiring"
	"github.com/systemstart/paychain/pkg/api"
)

const defaultReversalReason = "TIMEOUT"

// technicalReversal blindly reverses the last operation of the chain.
func technicalReversal() Endpoint {
	return &descriptor{
		callType: api.CallTechnicalReversal,
		requires: []string{api.KeyOperationID},
		provides: []string{api.KeyOperationID},
		chaining: true,
		build: func(in Input) (*Request, error) {
			original := in.Context[api.KeyOperationID]
			op, err := operation(in)
			if err != nil {
				return nil, err
			}
			reason := in.Step.ReversalReason
			if reason == "" {
				reason = defaultReversalReason
			}
			body := acquiring.TechnicalReversalRequest{Operation: op, Reason: reason}
			path := func(t acquiring.Target) string { return t.OperationReversePath(original) }
			return &Request{Method: http.MethodPost, Path: path, Body: body, OperationID: op.OperationID}, nil
		},
		extract: operationOnly,
	}
}

func accountVerification() Endpoint {
	return &descriptor{
		callType: api.CallAccountVerification,
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
			body := acquiring.AccountVerificationRequest{
				Operation:       op,
				CardPaymentData: cardPaymentData(in),
				MerchantData:    merchantData(in),
				References:      refs,
			}
			return &Request{Method: http.MethodPost, Path: acquiring.Target.AccountVerificationsPath, Body: body, OperationID: op.OperationID}, nil
		},
		extract: operationOnly,
	}
}

// balanceInquiry always sends a zero amount in the (possibly converted) currency.
func balanceInquiry() Endpoint {
	return &descriptor{
		callType: api.CallBalanceInquiry,
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

			amount := in.DCC.TransactionAmount(in.Step)
			if amount == nil {
				amount = &acquiring.AmountData{CurrencyCode: in.Step.Currency, NumberOfDecimals: 2}
			}
			amount.Amount = 0
			conversion := in.DCC.Data(in.Step)
			if conversion != nil {
				conversion.Amount = 0
			}

			body := acquiring.BalanceInquiryRequest{
				Operation:                 op,
				Amount:                    amount,
				CardPaymentData:           cardPaymentData(in),
				MerchantData:              merchantData(in),
				References:                refs,
				DynamicCurrencyConversion: conversion,
			}
			return &Request{Method: http.MethodPost, Path: acquiring.Target.BalanceInquiriesPath, Body: body, OperationID: op.OperationID}, nil
		},
		extract: operationOnly,
	}
}

func ping() Endpoint {
	return &descriptor{
		callType: api.CallPing,
		build: func(Input) (*Request, error) {
			path := func(acquiring.Target) string { return acquiring.PingPath }
			return &Request{Method: http.MethodGet, Path: path}, nil
		},
	}
}
