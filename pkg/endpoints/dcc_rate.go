package endpoints

import (
	"net/http"

	"github.com/systemstart/paychain/pkg/acquiring"
	"github.com/systemstart/paychain/pkg/api"
	"github.com/systemstart/paychain/pkg/dcc"
)

const binLength = 8

// dccRate requests a conversion rate, reusing the rate reference of the chain when present.
func dccRate() Endpoint {
	return &descriptor{
		callType: api.CallGetDCCRate,
		provides: []string{api.KeyDCCRateReferenceID},
		dcc:      true,
		chaining: true,
		build: func(in Input) (*Request, error) {
			id, err := in.Refs.OperationID(in.Step.TestID)
			if err != nil {
				return nil, err
			}

			txType := in.TransactionType
			if txType == "" {
				txType = dcc.TransactionType(in.Step.CallType)
			}
			var amount *acquiring.AmountData
			if in.Step.Amount != nil {
				amount = &acquiring.AmountData{Amount: *in.Step.Amount, CurrencyCode: in.Step.Currency, NumberOfDecimals: 2}
			}

			body := acquiring.DCCRateRequest{
				OperationID:    id,
				TargetCurrency: in.TargetCurrency,
				Transaction: &acquiring.DCCTransaction{
					Amount:               amount,
					TransactionType:      txType,
					TransactionTimestamp: timestamp(),
				},
				CardPaymentData: dccCardData(in),
			}
			if in.DCC != nil {
				body.RateReferenceID = in.DCC.RateReferenceID
			}
			return &Request{Method: http.MethodPost, Path: acquiring.Target.DCCRatesPath, Body: body, OperationID: id}, nil
		},
		extract: func(_ *Request, resp *acquiring.Response) map[string]string {
			return map[string]string{api.KeyDCCRateReferenceID: resp.String("proposal.rateReferenceId")}
		},
	}
}

func dccCardData(in Input) *acquiring.DCCCardData {
	card, ok := in.Tables.Cards[in.Step.CardID]
	if !ok {
		return nil
	}
	bin := card.BIN
	if bin == "" {
		bin = card.Number[:min(binLength, len(card.Number))]
	}
	return &acquiring.DCCCardData{Brand: card.Brand, BIN: bin, CardEntryMode: in.Step.CardEntryMode}
}
