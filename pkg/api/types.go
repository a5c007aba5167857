package api

const (
	CallCreatePayment              = "create_payment"
	CallIncrementPayment           = "increment_payment"
	CallCapturePayment             = "capture_payment"
	CallRefundPayment              = "refund_payment"
	CallReverseAuthorization       = "reverse_authorization"
	CallGetPayment                 = "get_payment"
	CallStandaloneRefund           = "standalone_refund"
	CallCaptureRefund              = "capture_refund"
	CallReverseRefundAuthorization = "reverse_refund_authorization"
	CallGetRefund                  = "get_refund"
	CallTechnicalReversal          = "technical_reversal"
	CallAccountVerification        = "process_account_verification"
	CallBalanceInquiry             = "process_balance_inquiry"
	CallGetDCCRate                 = "get_dcc_rate"
	CallPing                       = "ping"

	KeyPaymentID           = "payment_id"
	KeyRefundID            = "refund_id"
	KeyOperationID         = "operation_id"
	KeySchemeTransactionID = "scheme_transaction_id"
	KeyDCCRateReferenceID  = "dcc_rate_reference_id"
)

// StepStatus is the terminal state of one executed test step.
type StepStatus string

const (
	StepSucceeded                   StepStatus = "SUCCEEDED"
	StepFailedAPIError              StepStatus = "FAILED_API_ERROR"
	StepFailedAssertion             StepStatus = "FAILED_ASSERTION"
	StepSkippedMissingDependency    StepStatus = "SKIPPED_MISSING_DEPENDENCY"
	StepSkippedUnknownCallType      StepStatus = "SKIPPED_UNKNOWN_CALL_TYPE"
	StepSkippedMissingConfiguration StepStatus = "SKIPPED_MISSING_CONFIGURATION"
)

// ChainState tracks a chain through its execution.
type ChainState string

const (
	ChainPending         ChainState = "PENDING"
	ChainRunning         ChainState = "RUNNING"
	ChainCompleted       ChainState = "COMPLETED"
	ChainPartiallyFailed ChainState = "PARTIALLY_FAILED"
)

// TestStep is one row of a tests CSV.
type TestStep struct {
	ChainID   string
	StepOrder int
	CallType  string
	TestID    string
	Tags      []string

	// Line is the 1-based CSV line the step was read from.
	Line int

	Env      string
	Merchant string
	CardID   string

	Amount                       *int64
	Currency                     string
	AuthorizationType            string
	CaptureImmediately           *bool
	AllowPartialApproval         *bool
	CardEntryMode                string
	CardholderVerificationMethod string
	DynamicDescriptor            string
	BrandSelector                string
	IsFinal                      *bool
	CaptureSequenceNumber        *int64
	ReversalReason               string

	AddressRef      string
	ThreeDSRef      string
	CardOnFileRef   string
	NetworkTokenRef string
	MerchantDataRef string

	UseDCC            bool
	DCCTargetCurrency string

	Expect Expectations
}

// Expectations holds the expected_* columns of a step.
type Expectations struct {
	HTTPStatus         *int
	ResponseCode       string
	Status             string
	TotalAuthAmount    *int64
	CardSecurityResult string
	AVSResult          string
	MerchantAdviceCode string
	Expr               string
}

// Empty reports whether no expectation is declared.
func (e Expectations) Empty() bool {
	return e.HTTPStatus == nil && e.ResponseCode == "" && e.Status == "" &&
		e.TotalAuthAmount == nil && e.CardSecurityResult == "" && e.AVSResult == "" &&
		e.MerchantAdviceCode == "" && e.Expr == ""
}

// Chain is an ordered sequence of steps sharing a chain id.
type Chain struct {
	ID    string
	Steps []TestStep
}

// Environment describes one API environment.
type Environment struct {
	Name           string
	EndpointHost   string
	TokenURI       string
	Integrator     string
	ConnectTimeout int
	SocketTimeout  int
	ClientID       string
	ClientSecret   string
}

// Merchant maps an (env, merchant) pair to acquirer identifiers.
type Merchant struct {
	Env         string
	Key         string
	AcquirerID  string
	MerchantID  string
	Description string
}

// Card is a test card.
type Card struct {
	ID             string
	Brand          string
	BIN            string
	Number         string
	ExpiryDate     string
	SecurityCode   string
	SequenceNumber string
	Description    string
}

// Address is AVS data.
type Address struct {
	ID         string
	Address    string
	PostalCode string
}

// ThreeDS holds 3-D Secure authentication data and an optional SCA exemption.
type ThreeDS struct {
	ID                  string
	Type                string
	AuthenticationValue string
	ECI                 string
	Version             string
	SCAExemption        string
}

// CardOnFile configures a card-on-file (UCOF) transaction.
type CardOnFile struct {
	ID              string
	Initial         bool
	TransactionType string
	FutureUse       string
	Initiator       string
}

// NetworkToken carries wallet and cryptogram data.
type NetworkToken struct {
	ID         string
	WalletID   string
	Cryptogram string
	ECI        string
}

// MerchantData is merchant metadata sent with a transaction.
type MerchantData struct {
	ID           string
	CategoryCode int
	Name         string
	Address      string
	PostalCode   string
	City         string
	StateCode    string
	CountryCode  string
}

// Tables holds every indexed configuration table. Optional tables may be empty.
type Tables struct {
	Environments  map[string]Environment
	Merchants     map[MerchantKey]Merchant
	Cards         map[string]Card
	Addresses     map[string]Address
	ThreeDS       map[string]ThreeDS
	CardOnFile    map[string]CardOnFile
	NetworkTokens map[string]NetworkToken
	MerchantData  map[string]MerchantData
}

// MerchantKey indexes the merchants table.
type MerchantKey struct {
	Env      string
	Merchant string
}

// Merchant looks up the merchant configured for env.
func (t *Tables) Merchant(env, merchant string) (Merchant, bool) {
	m, ok := t.Merchants[MerchantKey{Env: env, Merchant: merchant}]
	return m, ok
}
