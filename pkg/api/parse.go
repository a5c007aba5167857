package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cast"
)

// Row is one CSV record addressed by lower-cased header name.
type Row struct {
	Line   int
	values map[string]string
}

// Get returns the trimmed cell for column, or "" when absent.
func (r Row) Get(column string) string {
	return r.values[column]
}

// Has reports whether the row carries a non-empty value for column.
func (r Row) Has(column string) bool {
	return r.values[column] != ""
}

// ReadTable parses CSV data, failing when a required column is missing from the header.
func ReadTable(r io.Reader, required ...string) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make([]string, len(header))
	present := make(map[string]bool, len(header))
	for i, h := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		present[columns[i]] = true
	}
	var missing []string
	for _, c := range required {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		line, _ := reader.FieldPos(0)

		values := make(map[string]string, len(columns))
		blank := true
		for i, v := range record {
			if i >= len(columns) {
				break
			}
			v = strings.TrimSpace(v)
			if v != "" {
				blank = false
			}
			values[columns[i]] = v
		}
		if blank {
			continue
		}
		rows = append(rows, Row{Line: line, values: values})
	}
	return rows, nil
}

// ReadTableFile opens filename and reads it with ReadTable.
func ReadTableFile(filename string, required ...string) ([]Row, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ReadTable(f, required...)
	if err != nil {
		return nil, &ConfigurationError{File: filename, Err: err}
	}
	return rows, nil
}

var testStepColumns = []string{"chain_id", "step_order", "call_type", "test_id"}

// LoadTestSteps reads a tests CSV, validates it and returns its steps sorted by chain and order.
func LoadTestSteps(filename string) ([]TestStep, error) {
	rows, err := ReadTableFile(filename, testStepColumns...)
	if err != nil {
		return nil, err
	}

	steps := make([]TestStep, 0, len(rows))
	for _, row := range rows {
		step, err := ParseTestStep(row)
		if err != nil {
			return nil, &ConfigurationError{File: filename, Line: row.Line, Err: err}
		}
		steps = append(steps, step)
	}

	if err := ValidateSteps(steps); err != nil {
		return nil, &ConfigurationError{File: filename, Err: err}
	}
	SortSteps(steps)
	return steps, nil
}

// ParseTestStep converts one tests CSV row into a TestStep.
func ParseTestStep(row Row) (TestStep, error) {
	order, err := toInt(row.Get("step_order"))
	if err != nil {
		return TestStep{}, fmt.Errorf("step_order: %w", err)
	}

	s := TestStep{
		ChainID:                      row.Get("chain_id"),
		StepOrder:                    int(order),
		CallType:                     row.Get("call_type"),
		TestID:                       row.Get("test_id"),
		Tags:                         SplitTags(row.Get("tags")),
		Line:                         row.Line,
		Env:                          row.Get("env"),
		Merchant:                     row.Get("merchant_id"),
		CardID:                       row.Get("card_id"),
		Currency:                     strings.ToUpper(row.Get("currency")),
		AuthorizationType:            row.Get("authorization_type"),
		CardEntryMode:                row.Get("card_entry_mode"),
		CardholderVerificationMethod: row.Get("cardholder_verification_method"),
		DynamicDescriptor:            row.Get("dynamic_descriptor"),
		BrandSelector:                row.Get("brand_selector"),
		ReversalReason:               row.Get("reversal_reason"),
		AddressRef:                   row.Get("address_data"),
		ThreeDSRef:                   row.Get("threed_secure_data"),
		CardOnFileRef:                row.Get("card_on_file_data"),
		NetworkTokenRef:              row.Get("network_token_data"),
		MerchantDataRef:              row.Get("merchant_data"),
		DCCTargetCurrency:            strings.ToUpper(row.Get("dcc_target_currency")),
	}

	var errs []error
	optInt := func(column string) *int64 {
		if !row.Has(column) {
			return nil
		}
		v, err := toInt(row.Get(column))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", column, err))
			return nil
		}
		return &v
	}
	optBool := func(column string) *bool {
		if !row.Has(column) {
			return nil
		}
		v, err := cast.ToBoolE(row.Get(column))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", column, err))
			return nil
		}
		return &v
	}

	s.Amount = optInt("amount")
	s.CaptureSequenceNumber = optInt("capture_sequence_number")
	s.CaptureImmediately = optBool("capture_immediately")
	s.AllowPartialApproval = optBool("allow_partial_approval")
	s.IsFinal = optBool("is_final")
	if useDCC := optBool("use_dcc"); useDCC != nil {
		s.UseDCC = *useDCC
	}

	s.Expect = Expectations{
		ResponseCode:       row.Get("expected_response_code"),
		Status:             row.Get("expected_status"),
		TotalAuthAmount:    optInt("expected_total_auth_amount"),
		CardSecurityResult: row.Get("expected_card_security_result"),
		AVSResult:          row.Get("expected_avs_result"),
		MerchantAdviceCode: row.Get("expected_merchant_advice_code"),
		Expr:               row.Get("expected_expr"),
	}
	if code := optInt("expected_http_status"); code != nil {
		status := int(*code)
		s.Expect.HTTPStatus = &status
	}

	return s, errors.Join(errs...)
}

// SplitTags splits a comma separated tag cell, dropping blanks.
func SplitTags(cell string) []string {
	var tags []string
	for _, t := range strings.Split(cell, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// toInt parses an integer cell. Spreadsheet exports may write "100.0".
func toInt(cell string) (int64, error) {
	if cell == "" {
		return 0, fmt.Errorf("empty value")
	}
	// cast treats a leading zero as an octal prefix
	trimmed := strings.TrimLeft(cell, "0")
	if trimmed == "" || strings.HasPrefix(trimmed, ".") {
		trimmed = "0" + trimmed
	}
	return cast.ToInt64E(trimmed)
}
