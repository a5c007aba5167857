package acquiring

import "encoding/json"

type AmountData struct {
	Amount           int64  `json:"amount"`
	CurrencyCode     string `json:"currencyCode"`
	NumberOfDecimals int    `json:"numberOfDecimals"`
}

type PlainCardData struct {
	CardNumber         string `json:"cardNumber"`
	ExpiryDate         string `json:"expiryDate,omitempty"`
	CardSecurityCode   string `json:"cardSecurityCode,omitempty"`
	CardSequenceNumber string `json:"cardSequenceNumber,omitempty"`
}

type ThreeDSecure struct {
	ThreeDSecureType             string `json:"threeDSecureType,omitempty"`
	AuthenticationValue          string `json:"authenticationValue,omitempty"`
	ECI                          string `json:"eci,omitempty"`
	Version                      string `json:"version,omitempty"`
	DirectoryServerTransactionID string `json:"directoryServerTransactionId,omitempty"`
}

type AddressVerificationData struct {
	CardholderAddress    string `json:"cardholderAddress,omitempty"`
	CardholderPostalCode string `json:"cardholderPostalCode,omitempty"`
}

type ECommerceData struct {
	ThreeDSecure            *ThreeDSecure            `json:"threeDSecure,omitempty"`
	AddressVerificationData *AddressVerificationData `json:"addressVerificationData,omitempty"`
	SCAExemptionRequest     string                   `json:"scaExemptionRequest,omitempty"`
}

type NetworkTokenData struct {
	Cryptogram string `json:"cryptogram,omitempty"`
	ECI        string `json:"eci,omitempty"`
}

type InitialCardOnFileData struct {
	TransactionType string `json:"transactionType,omitempty"`
	FutureUse       string `json:"futureUse,omitempty"`
}

type SubsequentCardOnFileData struct {
	TransactionType            string `json:"transactionType,omitempty"`
	CardOnFileInitiator        string `json:"cardOnFileInitiator,omitempty"`
	InitialSchemeTransactionID string `json:"initialSchemeTransactionId,omitempty"`
}

type CardOnFileData struct {
	IsInitialTransaction     bool                      `json:"isInitialTransaction"`
	InitialCardOnFileData    *InitialCardOnFileData    `json:"initialCardOnFileData,omitempty"`
	SubsequentCardOnFileData *SubsequentCardOnFileData `json:"subsequentCardOnFileData,omitempty"`
}

type CardPaymentData struct {
	Brand                        string            `json:"brand,omitempty"`
	BrandSelector                string            `json:"brandSelector,omitempty"`
	CaptureImmediately           *bool             `json:"captureImmediately,omitempty"`
	AllowPartialApproval         *bool             `json:"allowPartialApproval,omitempty"`
	CardEntryMode                string            `json:"cardEntryMode,omitempty"`
	CardholderVerificationMethod string            `json:"cardholderVerificationMethod,omitempty"`
	CardData                     *PlainCardData    `json:"cardData,omitempty"`
	ECommerceData                *ECommerceData    `json:"ecommerceData,omitempty"`
	NetworkTokenData             *NetworkTokenData `json:"networkTokenData,omitempty"`
	WalletID                     string            `json:"walletId,omitempty"`
	CardOnFileData               *CardOnFileData   `json:"cardOnFileData,omitempty"`
}

type MerchantData struct {
	MerchantCategoryCode int    `json:"merchantCategoryCode,omitempty"`
	Name                 string `json:"name,omitempty"`
	Address              string `json:"address,omitempty"`
	PostalCode           string `json:"postalCode,omitempty"`
	City                 string `json:"city,omitempty"`
	StateCode            string `json:"stateCode,omitempty"`
	CountryCode          string `json:"countryCode,omitempty"`
}

type PaymentReferences struct {
	MerchantReference string `json:"merchantReference,omitempty"`
	DynamicDescriptor string `json:"dynamicDescriptor,omitempty"`
}

// DCCData carries the merchant-currency amount and the rate of a converted transaction.
type DCCData struct {
	Amount           int64       `json:"amount"`
	CurrencyCode     string      `json:"currencyCode"`
	NumberOfDecimals int         `json:"numberOfDecimals"`
	ConversionRate   json.Number `json:"conversionRate"`
}

// Operation holds the fields every mutating request carries.
type Operation struct {
	OperationID          string `json:"operationId"`
	TransactionTimestamp string `json:"transactionTimestamp"`
}

type PaymentRequest struct {
	Operation
	Amount                    *AmountData        `json:"amount,omitempty"`
	AuthorizationType         string             `json:"authorizationType,omitempty"`
	CardPaymentData           *CardPaymentData   `json:"cardPaymentData,omitempty"`
	MerchantData              *MerchantData      `json:"merchant,omitempty"`
	References                *PaymentReferences `json:"references,omitempty"`
	DynamicCurrencyConversion *DCCData           `json:"dynamicCurrencyConversion,omitempty"`
}

type IncrementRequest struct {
	Operation
	IncrementAmount           *AmountData `json:"incrementAmount,omitempty"`
	DynamicCurrencyConversion *DCCData    `json:"dynamicCurrencyConversion,omitempty"`
}

type CaptureRequest struct {
	Operation
	Amount                    *AmountData        `json:"amount,omitempty"`
	IsFinal                   *bool              `json:"isFinal,omitempty"`
	CaptureSequenceNumber     *int64             `json:"captureSequenceNumber,omitempty"`
	References                *PaymentReferences `json:"references,omitempty"`
	DynamicCurrencyConversion *DCCData           `json:"dynamicCurrencyConversion,omitempty"`
}

type RefundRequest struct {
	Operation
	Amount                    *AmountData        `json:"amount,omitempty"`
	CardPaymentData           *CardPaymentData   `json:"cardPaymentData,omitempty"`
	MerchantData              *MerchantData      `json:"merchant,omitempty"`
	References                *PaymentReferences `json:"references,omitempty"`
	DynamicCurrencyConversion *DCCData           `json:"dynamicCurrencyConversion,omitempty"`
}

type ReversalRequest struct {
	Operation
	ReversalAmount            *AmountData `json:"reversalAmount,omitempty"`
	DynamicCurrencyConversion *DCCData    `json:"dynamicCurrencyConversion,omitempty"`
}

type TechnicalReversalRequest struct {
	Operation
	Reason string `json:"reason,omitempty"`
}

type AccountVerificationRequest struct {
	Operation
	CardPaymentData *CardPaymentData   `json:"cardPaymentData,omitempty"`
	MerchantData    *MerchantData      `json:"merchant,omitempty"`
	References      *PaymentReferences `json:"references,omitempty"`
}

type BalanceInquiryRequest struct {
	Operation
	Amount                    *AmountData        `json:"amount,omitempty"`
	CardPaymentData           *CardPaymentData   `json:"cardPaymentData,omitempty"`
	MerchantData              *MerchantData      `json:"merchant,omitempty"`
	References                *PaymentReferences `json:"references,omitempty"`
	DynamicCurrencyConversion *DCCData           `json:"dynamicCurrencyConversion,omitempty"`
}

type DCCTransaction struct {
	Amount               *AmountData `json:"amount"`
	TransactionType      string      `json:"transactionType"`
	TransactionTimestamp string      `json:"transactionTimestamp"`
}

type DCCCardData struct {
	Brand         string `json:"brand,omitempty"`
	BIN           string `json:"bin,omitempty"`
	CardEntryMode string `json:"cardEntryMode,omitempty"`
}

type DCCRateRequest struct {
	OperationID     string          `json:"operationId"`
	TargetCurrency  string          `json:"targetCurrency"`
	RateReferenceID string          `json:"rateReferenceId,omitempty"`
	Transaction     *DCCTransaction `json:"transaction"`
	CardPaymentData *DCCCardData    `json:"cardPaymentData,omitempty"`
}
