package dcc

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/systemstart/paychain/pkg/acquiring"
	"github.com/systemstart/paychain/pkg/api"
)

const (
	TransactionPayment = "PAYMENT"
	TransactionRefund  = "REFUND"
)

// Manager holds the conversion context of every running chain.
type Manager struct {
	DefaultCurrency string

	mu       sync.Mutex
	contexts map[string]*Context
}

func NewManager(defaultCurrency string) *Manager {
	return &Manager{DefaultCurrency: defaultCurrency, contexts: make(map[string]*Context)}
}

// GetOrCreate returns the context of chainID, creating it on first use.
func (m *Manager) GetOrCreate(chainID string) *Context {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contexts[chainID]
	if !ok {
		c = &Context{}
		m.contexts[chainID] = c
	}
	return c
}

// Get returns the context of chainID without creating one.
func (m *Manager) Get(chainID string) *Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contexts[chainID]
}

// Release discards the context of a finished chain.
func (m *Manager) Release(chainID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.contexts, chainID)
}

// TargetCurrency returns the conversion currency a step asks for, or "".
func (m *Manager) TargetCurrency(step api.TestStep) string {
	if step.DCCTargetCurrency != "" {
		return step.DCCTargetCurrency
	}
	if step.UseDCC {
		return m.DefaultCurrency
	}
	return ""
}

// ShouldInquire reports whether a rate inquiry precedes step.
func (m *Manager) ShouldInquire(step api.TestStep, supportsDCC bool) bool {
	return supportsDCC && m.TargetCurrency(step) != ""
}

// TransactionType classifies a call type for the rate inquiry.
func TransactionType(callType string) string {
	switch callType {
	case api.CallRefundPayment, api.CallStandaloneRefund:
		return TransactionRefund
	default:
		return TransactionPayment
	}
}

// UpdateFromResponse stores the rate proposal of a get_dcc_rate answer.
func (m *Manager) UpdateFromResponse(chainID string, resp *acquiring.Response) error {
	proposal, ok := resp.Lookup("proposal")
	if !ok {
		return fmt.Errorf("rate response has no proposal")
	}
	if _, ok := proposal.(map[string]any); !ok {
		return fmt.Errorf("rate response proposal is not an object")
	}

	original, err := amountAt(resp, "proposal.originalAmount")
	if err != nil {
		return err
	}
	resulting, err := amountAt(resp, "proposal.resultingAmount")
	if err != nil {
		return err
	}

	var rate decimal.Decimal
	if s := resp.String("proposal.rate.invertedExchangeRate"); s != "" {
		if rate, err = decimal.NewFromString(s); err != nil {
			return fmt.Errorf("parsing invertedExchangeRate: %w", err)
		}
	}

	// a context is only touched by the goroutine running its chain
	c := m.GetOrCreate(chainID)
	if id := resp.String("proposal.rateReferenceId"); id != "" {
		c.RateReferenceID = id
	}
	if original != nil {
		c.OriginalAmount = original
	}
	if resulting != nil {
		c.ResultingAmount = resulting
		c.TargetCurrency = resulting.Currency
	}
	if !rate.IsZero() {
		c.InvertedExchangeRate = rate
	}
	return nil
}

func amountAt(resp *acquiring.Response, path string) (*Amount, error) {
	if _, ok := resp.Lookup(path); !ok {
		return nil, nil
	}
	value, err := decimal.NewFromString(resp.String(path + ".amount"))
	if err != nil {
		return nil, fmt.Errorf("parsing %s.amount: %w", path, err)
	}
	a := &Amount{Value: value.IntPart(), Currency: resp.String(path + ".currencyCode"), Decimals: defaultDecimals}
	if d := resp.String(path + ".numberOfDecimals"); d != "" {
		n, err := decimal.NewFromString(d)
		if err != nil {
			return nil, fmt.Errorf("parsing %s.numberOfDecimals: %w", path, err)
		}
		a.Decimals = int(n.IntPart())
	}
	return a, nil
}
