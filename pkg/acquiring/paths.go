package acquiring

import (
	"fmt"
	"net/url"
)

// Target identifies the acquirer and merchant a call is made for.
type Target struct {
	AcquirerID string
	MerchantID string
}

func (t Target) processing() string {
	return fmt.Sprintf("/processing/v1/%s/%s", url.PathEscape(t.AcquirerID), url.PathEscape(t.MerchantID))
}

func (t Target) PaymentsPath() string {
	return t.processing() + "/payments"
}

func (t Target) PaymentPath(paymentID string) string {
	return t.PaymentsPath() + "/" + url.PathEscape(paymentID)
}

func (t Target) RefundsPath() string {
	return t.processing() + "/refunds"
}

func (t Target) RefundPath(refundID string) string {
	return t.RefundsPath() + "/" + url.PathEscape(refundID)
}

func (t Target) OperationReversePath(operationID string) string {
	return t.processing() + "/operations/" + url.PathEscape(operationID) + "/reverse"
}

func (t Target) AccountVerificationsPath() string {
	return t.processing() + "/account-verifications"
}

func (t Target) BalanceInquiriesPath() string {
	return t.processing() + "/balance-inquiries"
}

func (t Target) DCCRatesPath() string {
	return fmt.Sprintf("/services/v1/%s/%s/dcc-rates", url.PathEscape(t.AcquirerID), url.PathEscape(t.MerchantID))
}

const PingPath = "/services/v1/ping"
