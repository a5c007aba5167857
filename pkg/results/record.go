// Package results persists one record per executed test step.
package results

import (
	"strconv"
	"time"

	"github.com/systemstart/paychain/pkg/api"
)

// Record is the outcome of one executed step.
type Record struct {
	RunID               string
	ChainID             string
	StepOrder           int
	CallType            string
	TestID              string
	Status              api.StepStatus
	HTTPStatus          int
	ResponseCode        string
	BusinessStatus      string
	PaymentID           string
	RefundID            string
	TraceID             string
	MerchantDescription string
	CardDescription     string
	Request             string
	Response            string
	Assertions          string
	Passed              bool
	Duration            time.Duration
	StartedAt           time.Time
	WorkerID            int
	Error               string
	ErrorTitle          string
	ErrorDetail         string
	DCCNote             string
}

// Columns is the column order of the CSV export and the runs table.
var Columns = []string{
	"run_id", "chain_id", "step_order", "call_type", "test_id", "status",
	"http_status", "response_code", "business_status", "payment_id", "refund_id", "trace_id",
	"merchant_description", "card_description", "request", "response", "assertions", "passed",
	"duration_ms", "started_at", "worker_id", "error", "error_title", "error_detail", "dcc_note",
}

const timeLayout = time.RFC3339Nano

// Values renders r in Columns order.
func (r Record) Values() []string {
	return []string{
		r.RunID, r.ChainID, strconv.Itoa(r.StepOrder), r.CallType, r.TestID, string(r.Status),
		strconv.Itoa(r.HTTPStatus), r.ResponseCode, r.BusinessStatus, r.PaymentID, r.RefundID, r.TraceID,
		r.MerchantDescription, r.CardDescription, r.Request, r.Response, r.Assertions, strconv.FormatBool(r.Passed),
		strconv.FormatInt(r.Duration.Milliseconds(), 10), r.StartedAt.UTC().Format(timeLayout), strconv.Itoa(r.WorkerID),
		r.Error, r.ErrorTitle, r.ErrorDetail, r.DCCNote,
	}
}
