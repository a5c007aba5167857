package dcc

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/systemstart/paychain/pkg/acquiring"
	"github.com/systemstart/paychain/pkg/api"
)

const defaultDecimals = 2

// Amount is a monetary amount in minor units.
type Amount struct {
	Value    int64
	Currency string
	Decimals int
}

func (a Amount) Data() *acquiring.AmountData {
	return &acquiring.AmountData{Amount: a.Value, CurrencyCode: a.Currency, NumberOfDecimals: a.Decimals}
}

// Context is the conversion state of one chain.
type Context struct {
	RateReferenceID      string
	OriginalAmount       *Amount
	ResultingAmount      *Amount
	InvertedExchangeRate decimal.Decimal
	TargetCurrency       string
}

// Converted reports whether a rate proposal has been received.
func (c *Context) Converted() bool {
	return c != nil && c.RateReferenceID != ""
}

// TransactionAmount is the amount to send for step: the converted amount
// when a proposal exists, else the row's own amount. Nil when neither exists.
func (c *Context) TransactionAmount(step api.TestStep) *acquiring.AmountData {
	if c.Converted() && c.ResultingAmount != nil {
		return c.ResultingAmount.Data()
	}
	if step.Amount == nil {
		return nil
	}
	return Amount{Value: *step.Amount, Currency: step.Currency, Decimals: defaultDecimals}.Data()
}

// Data is the dynamicCurrencyConversion block carrying the original merchant amount.
func (c *Context) Data(step api.TestStep) *acquiring.DCCData {
	if !c.Converted() {
		return nil
	}
	d := &acquiring.DCCData{
		CurrencyCode:     step.Currency,
		NumberOfDecimals: defaultDecimals,
		ConversionRate:   json.Number(c.InvertedExchangeRate.String()),
	}
	switch {
	case step.Amount != nil:
		d.Amount = *step.Amount
	case c.OriginalAmount != nil:
		d.Amount = c.OriginalAmount.Value
		d.CurrencyCode = c.OriginalAmount.Currency
		d.NumberOfDecimals = c.OriginalAmount.Decimals
	}
	return d
}
