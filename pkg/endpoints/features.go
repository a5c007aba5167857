package endpoints

import (
	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/systemstart/paychain/pkg/acquiring"
	"github.com/systemstart/paychain/pkg/api"
)

// cardPaymentData builds the card block of a row. Features referenced by the
// row but missing from the tables are logged and skipped.
func cardPaymentData(in Input) *acquiring.CardPaymentData {
	s := in.Step
	cpd := &acquiring.CardPaymentData{
		BrandSelector:                s.BrandSelector,
		CaptureImmediately:           s.CaptureImmediately,
		AllowPartialApproval:         s.AllowPartialApproval,
		CardEntryMode:                s.CardEntryMode,
		CardholderVerificationMethod: s.CardholderVerificationMethod,
	}

	if s.CardID != "" {
		card, ok := in.Tables.Cards[s.CardID]
		if ok {
			cpd.Brand = card.Brand
			cpd.CardData = &acquiring.PlainCardData{
				CardNumber:         card.Number,
				ExpiryDate:         card.ExpiryDate,
				CardSecurityCode:   card.SecurityCode,
				CardSequenceNumber: card.SequenceNumber,
			}
		} else {
			in.logger().Error("card not configured", "card", s.CardID)
		}
	}

	applyAVS(in, cpd)
	applyThreeDS(in, cpd)
	applyNetworkToken(in, cpd)
	applyCardOnFile(in, cpd)
	return cpd
}

func ecommerce(cpd *acquiring.CardPaymentData) *acquiring.ECommerceData {
	if cpd.ECommerceData == nil {
		cpd.ECommerceData = &acquiring.ECommerceData{}
	}
	return cpd.ECommerceData
}

func applyAVS(in Input, cpd *acquiring.CardPaymentData) {
	ref := in.Step.AddressRef
	if ref == "" {
		return
	}
	addr, ok := in.Tables.Addresses[ref]
	if !ok {
		in.logger().Error("address not configured, skipping AVS", "address", ref)
		return
	}
	ecommerce(cpd).AddressVerificationData = &acquiring.AddressVerificationData{
		CardholderAddress:    addr.Address,
		CardholderPostalCode: addr.PostalCode,
	}
	in.logger().Debug("AVS data applied", "address", ref)
}

func applyThreeDS(in Input, cpd *acquiring.CardPaymentData) {
	ref := in.Step.ThreeDSRef
	if ref == "" {
		return
	}
	tds, ok := in.Tables.ThreeDS[ref]
	if !ok {
		in.logger().Error("3-D Secure data not configured, skipping", "threeds", ref)
		return
	}

	if tds.AuthenticationValue != "" || tds.ECI != "" || tds.Type != "" {
		ecommerce(cpd).ThreeDSecure = &acquiring.ThreeDSecure{
			ThreeDSecureType:             tds.Type,
			AuthenticationValue:          tds.AuthenticationValue,
			ECI:                          tds.ECI,
			Version:                      normalizeVersion(in, tds.Version),
			DirectoryServerTransactionID: uuid.New().String(),
		}
	}
	if tds.SCAExemption != "" {
		ecommerce(cpd).SCAExemptionRequest = tds.SCAExemption
	}
	in.logger().Debug("3-D Secure data applied", "threeds", ref, "exemption", tds.SCAExemption)
}

// normalizeVersion renders a 3-D Secure protocol version as major.minor.patch.
func normalizeVersion(in Input, version string) string {
	if version == "" {
		return ""
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		in.logger().Warn("invalid 3-D Secure version, omitting", "version", version, "error", err)
		return ""
	}
	return v.String()
}

func applyNetworkToken(in Input, cpd *acquiring.CardPaymentData) {
	ref := in.Step.NetworkTokenRef
	if ref == "" {
		return
	}
	token, ok := in.Tables.NetworkTokens[ref]
	if !ok {
		in.logger().Error("network token not configured, skipping", "networkToken", ref)
		return
	}
	cpd.NetworkTokenData = &acquiring.NetworkTokenData{Cryptogram: token.Cryptogram, ECI: token.ECI}
	cpd.WalletID = token.WalletID
	in.logger().Debug("network token applied", "networkToken", ref, "wallet", token.WalletID)
}

func applyCardOnFile(in Input, cpd *acquiring.CardPaymentData) {
	ref := in.Step.CardOnFileRef
	if ref == "" {
		return
	}
	cof, ok := in.Tables.CardOnFile[ref]
	if !ok {
		in.logger().Error("card-on-file data not configured, skipping", "cardOnFile", ref)
		return
	}

	data := &acquiring.CardOnFileData{IsInitialTransaction: cof.Initial}
	if cof.Initial {
		data.InitialCardOnFileData = &acquiring.InitialCardOnFileData{
			TransactionType: cof.TransactionType,
			FutureUse:       cof.FutureUse,
		}
	} else {
		sub := &acquiring.SubsequentCardOnFileData{
			TransactionType:     cof.TransactionType,
			CardOnFileInitiator: cof.Initiator,
		}
		if id := in.Context[api.KeySchemeTransactionID]; id != "" {
			sub.InitialSchemeTransactionID = id
		} else {
			in.logger().Warn("no scheme transaction id in chain for subsequent card-on-file transaction", "cardOnFile", ref)
		}
		data.SubsequentCardOnFileData = sub
	}
	cpd.CardOnFileData = data
	in.logger().Debug("card-on-file data applied", "cardOnFile", ref, "initial", cof.Initial)
}

func merchantData(in Input) *acquiring.MerchantData {
	ref := in.Step.MerchantDataRef
	if ref == "" {
		return nil
	}
	md, ok := in.Tables.MerchantData[ref]
	if !ok {
		in.logger().Error("merchant data not configured, skipping", "merchantData", ref)
		return nil
	}
	return &acquiring.MerchantData{
		MerchantCategoryCode: md.CategoryCode,
		Name:                 md.Name,
		Address:              md.Address,
		PostalCode:           md.PostalCode,
		City:                 md.City,
		StateCode:            md.StateCode,
		CountryCode:          md.CountryCode,
	}
}
