// Package request holds the typed OpenFIGI request bodies, their builders and
// the client-side validation rules applied before anything is sent.
package request

import "openfigi/pkg/core"

// FilterSet is the set of optional criteria shared by every request kind.
// It is embedded in each request and serialized flat into the request object.
// Unset fields are omitted from the JSON.
type FilterSet struct {
	ExchCode                core.ExchCode      `json:"exchCode,omitempty"`
	MicCode                 core.MicCode       `json:"micCode,omitempty"`
	Currency                core.Currency      `json:"currency,omitempty"`
	MarketSecDes            core.MarketSecDesc `json:"marketSecDes,omitempty"`
	SecurityType            core.SecurityType  `json:"securityType,omitempty"`
	SecurityType2           core.SecurityType2 `json:"securityType2,omitempty"`
	IncludeUnlistedEquities *bool              `json:"includeUnlistedEquities,omitempty"`
	OptionType              core.OptionType    `json:"optionType,omitempty"`
	Strike                  *NumberRange       `json:"strike,omitempty"`
	ContractSize            *NumberRange       `json:"contractSize,omitempty"`
	Coupon                  *NumberRange       `json:"coupon,omitempty"`
	Expiration              *DateRange         `json:"expiration,omitempty"`
	Maturity                *DateRange         `json:"maturity,omitempty"`
	StateCode               core.StateCode     `json:"stateCode,omitempty"`
}

// IsEmpty reports whether no criterion is set.
func (f *FilterSet) IsEmpty() bool {
	return *f == FilterSet{}
}

// Clone returns a copy of f that shares no pointers with it.
func (f FilterSet) Clone() FilterSet {
	f.IncludeUnlistedEquities = clonePtr(f.IncludeUnlistedEquities)
	f.Strike = f.Strike.clone()
	f.ContractSize = f.ContractSize.clone()
	f.Coupon = f.Coupon.clone()
	f.Expiration = f.Expiration.clone()
	f.Maturity = f.Maturity.clone()
	return f
}

// Validate checks the cross-field rules in a fixed order and returns the first
// violation. It never modifies f.
func (f *FilterSet) Validate() error {
	if f.ExchCode != "" && f.MicCode != "" {
		return core.NewValidationError(core.ErrCodeInvalidFilter, "exchCode",
			"cannot set both exchCode and micCode")
	}

	numeric := []struct {
		field string
		r     *NumberRange
	}{
		{"strike", f.Strike},
		{"contractSize", f.ContractSize},
		{"coupon", f.Coupon},
	}
	for _, n := range numeric {
		if err := n.r.validate(n.field); err != nil {
			return err
		}
	}

	if err := f.Expiration.validate("expiration"); err != nil {
		return err
	}
	if err := f.Maturity.validate("maturity"); err != nil {
		return err
	}

	if f.SecurityType2.RequiresExpiration() && f.Expiration == nil {
		return core.NewValidationError(core.ErrCodeInvalidFilter, "expiration",
			"expiration is required for Option or Warrant security types")
	}
	if f.SecurityType2.RequiresMaturity() && f.Maturity == nil {
		return core.NewValidationError(core.ErrCodeInvalidFilter, "maturity",
			"maturity is required for Pool security types")
	}

	if f.OptionType != "" && !f.OptionType.Valid() {
		return core.NewValidationError(core.ErrCodeInvalidFilter, "optionType",
			"optionType must be Call or Put, got "+string(f.OptionType))
	}
	return nil
}
