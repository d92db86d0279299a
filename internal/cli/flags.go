package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"openfigi/pkg/core"
	"openfigi/pkg/request"
)

// filterFlags are the filter criteria accepted by map, search and filter.
type filterFlags struct {
	exchCode        string
	micCode         string
	currency        string
	marketSecDes    string
	securityType    string
	securityType2   string
	includeUnlisted bool
	optionType      string
	strike          string
	contractSize    string
	coupon          string
	expiration      string
	maturity        string
	stateCode       string
}

func addFilterFlags(cmd *cobra.Command, f *filterFlags) {
	flags := cmd.Flags()
	flags.StringVar(&f.exchCode, "exch-code", "", "exchange code, e.g. US")
	flags.StringVar(&f.micCode, "mic-code", "", "ISO market identification code, e.g. XNAS")
	flags.StringVar(&f.currency, "currency", "", "currency, e.g. USD")
	flags.StringVar(&f.marketSecDes, "market-sec-des", "", "market sector, e.g. Equity")
	flags.StringVar(&f.securityType, "security-type", "", "security type, e.g. Common Stock")
	flags.StringVar(&f.securityType2, "security-type2", "", "security type 2, e.g. Option")
	flags.BoolVar(&f.includeUnlisted, "include-unlisted", false, "include unlisted equities")
	flags.StringVar(&f.optionType, "option-type", "", "Call or Put")
	flags.StringVar(&f.strike, "strike", "", "strike range lo:hi, either side may be empty")
	flags.StringVar(&f.contractSize, "contract-size", "", "contract size range lo:hi")
	flags.StringVar(&f.coupon, "coupon", "", "coupon range lo:hi")
	flags.StringVar(&f.expiration, "expiration", "", "expiration range YYYY-MM-DD:YYYY-MM-DD")
	flags.StringVar(&f.maturity, "maturity", "", "maturity range YYYY-MM-DD:YYYY-MM-DD")
	flags.StringVar(&f.stateCode, "state-code", "", "US state code, e.g. CA")
}

// filterSet converts the flags. Range syntax errors are reported here; the
// filter rules themselves are checked by the request builders.
func (f *filterFlags) filterSet(cmd *cobra.Command) (request.FilterSet, error) {
	fs := request.FilterSet{
		ExchCode:      core.ExchCode(f.exchCode),
		MicCode:       core.MicCode(f.micCode),
		Currency:      core.Currency(f.currency),
		MarketSecDes:  core.MarketSecDesc(f.marketSecDes),
		SecurityType:  core.SecurityType(f.securityType),
		SecurityType2: core.SecurityType2(f.securityType2),
		OptionType:    core.OptionType(f.optionType),
		StateCode:     core.StateCode(f.stateCode),
	}
	if cmd.Flags().Changed("include-unlisted") {
		v := f.includeUnlisted
		fs.IncludeUnlistedEquities = &v
	}

	var err error
	if fs.Strike, err = parseNumberRange("strike", f.strike); err != nil {
		return fs, err
	}
	if fs.ContractSize, err = parseNumberRange("contract-size", f.contractSize); err != nil {
		return fs, err
	}
	if fs.Coupon, err = parseNumberRange("coupon", f.coupon); err != nil {
		return fs, err
	}
	if fs.Expiration, err = parseDateRange("expiration", f.expiration); err != nil {
		return fs, err
	}
	if fs.Maturity, err = parseDateRange("maturity", f.maturity); err != nil {
		return fs, err
	}
	return fs, nil
}

func splitRange(flag, s string) (string, string, error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return "", "", fmt.Errorf("--%s: expected lo:hi, got %q", flag, s)
	}
	return strings.TrimSpace(lo), strings.TrimSpace(hi), nil
}

func parseNumberRange(flag, s string) (*request.NumberRange, error) {
	if s == "" {
		return nil, nil
	}
	lo, hi, err := splitRange(flag, s)
	if err != nil {
		return nil, err
	}

	r := &request.NumberRange{}
	if lo != "" {
		v, err := strconv.ParseFloat(lo, 64)
		if err != nil {
			return nil, fmt.Errorf("--%s: invalid lower bound %q", flag, lo)
		}
		r.From = &v
	}
	if hi != "" {
		v, err := strconv.ParseFloat(hi, 64)
		if err != nil {
			return nil, fmt.Errorf("--%s: invalid upper bound %q", flag, hi)
		}
		r.To = &v
	}
	return r, nil
}

func parseDateRange(flag, s string) (*request.DateRange, error) {
	if s == "" {
		return nil, nil
	}
	lo, hi, err := splitRange(flag, s)
	if err != nil {
		return nil, err
	}

	r := &request.DateRange{}
	if lo != "" {
		d, err := core.ParseDate(lo)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", flag, err)
		}
		r.From = &d
	}
	if hi != "" {
		d, err := core.ParseDate(hi)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", flag, err)
		}
		r.To = &d
	}
	return r, nil
}
