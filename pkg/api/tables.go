package api

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// index builds a keyed table from rows. A repeated key is an error.
func index[K comparable, V any](rows []Row, keyColumn string, key func(Row) K, build func(Row) (V, error)) (map[K]V, error) {
	out := make(map[K]V, len(rows))
	for _, row := range rows {
		if row.Get(keyColumn) == "" {
			return nil, fmt.Errorf("line %d: %s is empty", row.Line, keyColumn)
		}
		k := key(row)
		if _, exists := out[k]; exists {
			return nil, fmt.Errorf("line %d: duplicate key %v", row.Line, k)
		}
		v, err := build(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", row.Line, err)
		}
		out[k] = v
	}
	return out, nil
}

func column(name string) func(Row) string {
	return func(r Row) string { return r.Get(name) }
}

var (
	EnvironmentColumns  = []string{"env", "endpoint_host"}
	MerchantColumns     = []string{"env", "merchant", "acquirer_id", "merchant_id"}
	CardColumns         = []string{"card_id", "card_number"}
	CredentialColumns   = []string{"env", "client_id", "client_secret"}
	AddressColumns      = []string{"address_id"}
	ThreeDSColumns      = []string{"three_d_id"}
	CardOnFileColumns   = []string{"card_on_file_id", "is_initial_transaction", "transaction_type"}
	NetworkTokenColumns = []string{"networktoken_id"}
	MerchantDataColumns = []string{"merchant_data_id"}
)

func ParseEnvironments(rows []Row) (map[string]Environment, error) {
	return index(rows, "env", column("env"), func(r Row) (Environment, error) {
		env := Environment{
			Name:         r.Get("env"),
			EndpointHost: r.Get("endpoint_host"),
			TokenURI:     r.Get("oauth2_token_uri"),
			Integrator:   r.Get("integrator"),
		}
		var err error
		if r.Has("connect_timeout") {
			if env.ConnectTimeout, err = cast.ToIntE(r.Get("connect_timeout")); err != nil {
				return env, fmt.Errorf("connect_timeout: %w", err)
			}
		}
		if r.Has("socket_timeout") {
			if env.SocketTimeout, err = cast.ToIntE(r.Get("socket_timeout")); err != nil {
				return env, fmt.Errorf("socket_timeout: %w", err)
			}
		}
		return env, nil
	})
}

func ParseMerchants(rows []Row) (map[MerchantKey]Merchant, error) {
	key := func(r Row) MerchantKey { return MerchantKey{Env: r.Get("env"), Merchant: r.Get("merchant")} }
	return index(rows, "merchant", key, func(r Row) (Merchant, error) {
		return Merchant{
			Env:         r.Get("env"),
			Key:         r.Get("merchant"),
			AcquirerID:  r.Get("acquirer_id"),
			MerchantID:  r.Get("merchant_id"),
			Description: r.Get("merchant_description"),
		}, nil
	})
}

func ParseCards(rows []Row) (map[string]Card, error) {
	return index(rows, "card_id", column("card_id"), func(r Row) (Card, error) {
		return Card{
			ID:             r.Get("card_id"),
			Brand:          r.Get("card_brand"),
			BIN:            r.Get("card_bin"),
			Number:         r.Get("card_number"),
			ExpiryDate:     r.Get("expiry_date"),
			SecurityCode:   r.Get("card_security_code"),
			SequenceNumber: r.Get("card_sequence_number"),
			Description:    r.Get("card_description"),
		}, nil
	})
}

// Credentials are OAuth2 client credentials for one environment.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

func ParseCredentials(rows []Row) (map[string]Credentials, error) {
	return index(rows, "env", column("env"), func(r Row) (Credentials, error) {
		return Credentials{ClientID: r.Get("client_id"), ClientSecret: r.Get("client_secret")}, nil
	})
}

func ParseAddresses(rows []Row) (map[string]Address, error) {
	return index(rows, "address_id", column("address_id"), func(r Row) (Address, error) {
		return Address{
			ID:         r.Get("address_id"),
			Address:    r.Get("cardholder_address"),
			PostalCode: r.Get("cardholder_postal_code"),
		}, nil
	})
}

func ParseThreeDS(rows []Row) (map[string]ThreeDS, error) {
	return index(rows, "three_d_id", column("three_d_id"), func(r Row) (ThreeDS, error) {
		return ThreeDS{
			ID:                  r.Get("three_d_id"),
			Type:                r.Get("three_d_secure_type"),
			AuthenticationValue: r.Get("authentication_value"),
			ECI:                 r.Get("eci"),
			Version:             r.Get("version"),
			SCAExemption:        r.Get("sca_exemption_requested"),
		}, nil
	})
}

func ParseCardOnFile(rows []Row) (map[string]CardOnFile, error) {
	return index(rows, "card_on_file_id", column("card_on_file_id"), func(r Row) (CardOnFile, error) {
		initial := strings.EqualFold(r.Get("is_initial_transaction"), "true")
		return CardOnFile{
			ID:              r.Get("card_on_file_id"),
			Initial:         initial,
			TransactionType: r.Get("transaction_type"),
			FutureUse:       r.Get("future_use"),
			Initiator:       r.Get("card_on_file_initiator"),
		}, nil
	})
}

func ParseNetworkTokens(rows []Row) (map[string]NetworkToken, error) {
	return index(rows, "networktoken_id", column("networktoken_id"), func(r Row) (NetworkToken, error) {
		return NetworkToken{
			ID:         r.Get("networktoken_id"),
			WalletID:   r.Get("wallet_id"),
			Cryptogram: r.Get("network_token_cryptogram"),
			ECI:        r.Get("network_token_eci"),
		}, nil
	})
}

func ParseMerchantData(rows []Row) (map[string]MerchantData, error) {
	return index(rows, "merchant_data_id", column("merchant_data_id"), func(r Row) (MerchantData, error) {
		md := MerchantData{
			ID:          r.Get("merchant_data_id"),
			Name:        r.Get("name"),
			Address:     r.Get("address"),
			PostalCode:  r.Get("postal_code"),
			City:        r.Get("city"),
			StateCode:   r.Get("state_code"),
			CountryCode: r.Get("country_code"),
		}
		if r.Has("merchant_category_code") {
			mcc, err := toInt(r.Get("merchant_category_code"))
			if err != nil {
				return md, fmt.Errorf("merchant_category_code: %w", err)
			}
			md.CategoryCode = int(mcc)
		}
		return md, nil
	})
}
