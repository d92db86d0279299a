package core

// The value sets below mirror the ones the service publishes at
// GET /v3/mapping/values/{key}. Only IDType and OptionType are checked
// locally; the other sets change upstream more often than this module and
// are passed through as given.

// IDType is the kind of third-party identifier being mapped.
type IDType string

const (
	IDTypeISIN                    IDType = "ID_ISIN"
	IDTypeBBUnique                IDType = "ID_BB_UNIQUE"
	IDTypeSEDOL                   IDType = "ID_SEDOL"
	IDTypeCommon                  IDType = "ID_COMMON"
	IDTypeWertpapier              IDType = "ID_WERTPAPIER"
	IDTypeCUSIP                   IDType = "ID_CUSIP"
	IDTypeCINS                    IDType = "ID_CINS"
	IDTypeBB                      IDType = "ID_BB"
	IDTypeBB8Chr                  IDType = "ID_BB_8_CHR"
	IDTypeTrace                   IDType = "ID_TRACE"
	IDTypeItaly                   IDType = "ID_ITALY"
	IDTypeExchSymbol              IDType = "ID_EXCH_SYMBOL"
	IDTypeFullExchangeSymbol      IDType = "ID_FULL_EXCHANGE_SYMBOL"
	IDTypeCompositeIDBBGlobal     IDType = "COMPOSITE_ID_BB_GLOBAL"
	IDTypeShareClassIDBBGlobal    IDType = "ID_BB_GLOBAL_SHARE_CLASS_LEVEL"
	IDTypeBBSecNumDes             IDType = "ID_BB_SEC_NUM_DES"
	IDTypeBBGlobal                IDType = "ID_BB_GLOBAL"
	IDTypeTicker                  IDType = "TICKER"
	IDTypeBaseTicker              IDType = "BASE_TICKER"
	IDTypeCUSIP8Chr               IDType = "ID_CUSIP_8_CHR"
	IDTypeOCCSymbol               IDType = "OCC_SYMBOL"
	IDTypeUniqueIDFutOpt          IDType = "UNIQUE_ID_FUT_OPT"
	IDTypeOPRASymbol              IDType = "OPRA_SYMBOL"
	IDTypeTradingSystemIdentifier IDType = "TRADING_SYSTEM_IDENTIFIER"
	IDTypeShortCode               IDType = "ID_SHORT_CODE"
	IDTypeVendorIndexCode         IDType = "VENDOR_INDEX_CODE"
)

var idTypes = map[IDType]struct{}{
	IDTypeISIN: {}, IDTypeBBUnique: {}, IDTypeSEDOL: {}, IDTypeCommon: {},
	IDTypeWertpapier: {}, IDTypeCUSIP: {}, IDTypeCINS: {}, IDTypeBB: {},
	IDTypeBB8Chr: {}, IDTypeTrace: {}, IDTypeItaly: {}, IDTypeExchSymbol: {},
	IDTypeFullExchangeSymbol: {}, IDTypeCompositeIDBBGlobal: {}, IDTypeShareClassIDBBGlobal: {},
	IDTypeBBSecNumDes: {}, IDTypeBBGlobal: {}, IDTypeTicker: {}, IDTypeBaseTicker: {},
	IDTypeCUSIP8Chr: {}, IDTypeOCCSymbol: {}, IDTypeUniqueIDFutOpt: {}, IDTypeOPRASymbol: {},
	IDTypeTradingSystemIdentifier: {}, IDTypeShortCode: {}, IDTypeVendorIndexCode: {},
}

// Valid reports whether t is one of the identifier types the service accepts.
func (t IDType) Valid() bool {
	_, ok := idTypes[t]
	return ok
}

// RequiresSecurityType2 reports whether a mapping job with this identifier
// type must also name a securityType2.
func (t IDType) RequiresSecurityType2() bool {
	return t == IDTypeBaseTicker || t == IDTypeExchSymbol
}

// OptionType selects calls or puts.
type OptionType string

const (
	OptionTypeCall OptionType = "Call"
	OptionTypePut  OptionType = "Put"
)

func (t OptionType) Valid() bool {
	return t == OptionTypeCall || t == OptionTypePut
}

// ExchCode is a Bloomberg exchange code.
type ExchCode string

const (
	ExchCodeUS ExchCode = "US"
	ExchCodeUN ExchCode = "UN"
	ExchCodeUW ExchCode = "UW"
	ExchCodeUQ ExchCode = "UQ"
	ExchCodeUA ExchCode = "UA"
	ExchCodeUP ExchCode = "UP"
	ExchCodeLN ExchCode = "LN"
	ExchCodeGY ExchCode = "GY"
	ExchCodeGR ExchCode = "GR"
	ExchCodeFP ExchCode = "FP"
	ExchCodeNA ExchCode = "NA"
	ExchCodeSW ExchCode = "SW"
	ExchCodeIM ExchCode = "IM"
	ExchCodeSM ExchCode = "SM"
	ExchCodeJP ExchCode = "JP"
	ExchCodeJT ExchCode = "JT"
	ExchCodeHK ExchCode = "HK"
	ExchCodeCN ExchCode = "CN"
	ExchCodeCT ExchCode = "CT"
	ExchCodeAU ExchCode = "AU"
	ExchCodeAT ExchCode = "AT"
	ExchCodeKS ExchCode = "KS"
	ExchCodeIN ExchCode = "IN"
)

// MicCode is an ISO 10383 market identifier code.
type MicCode string

const (
	MicCodeXNYS MicCode = "XNYS"
	MicCodeXNAS MicCode = "XNAS"
	MicCodeARCX MicCode = "ARCX"
	MicCodeBATS MicCode = "BATS"
	MicCodeXLON MicCode = "XLON"
	MicCodeXETR MicCode = "XETR"
	MicCodeXPAR MicCode = "XPAR"
	MicCodeXAMS MicCode = "XAMS"
	MicCodeXSWX MicCode = "XSWX"
	MicCodeXTKS MicCode = "XTKS"
	MicCodeXHKG MicCode = "XHKG"
	MicCodeXTSE MicCode = "XTSE"
	MicCodeXASX MicCode = "XASX"
	MicCodeXCME MicCode = "XCME"
	MicCodeXCBO MicCode = "XCBO"
)

// Currency is an ISO 4217 currency code.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyGBp Currency = "GBp"
	CurrencyJPY Currency = "JPY"
	CurrencyCHF Currency = "CHF"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
	CurrencyHKD Currency = "HKD"
	CurrencyCNY Currency = "CNY"
	CurrencyKRW Currency = "KRW"
	CurrencyINR Currency = "INR"
	CurrencySEK Currency = "SEK"
	CurrencyNOK Currency = "NOK"
	CurrencyDKK Currency = "DKK"
)

// MarketSecDesc is the Bloomberg market sector.
type MarketSecDesc string

const (
	MarketSecDescComdty MarketSecDesc = "Comdty"
	MarketSecDescCorp   MarketSecDesc = "Corp"
	MarketSecDescCurncy MarketSecDesc = "Curncy"
	MarketSecDescEquity MarketSecDesc = "Equity"
	MarketSecDescGovt   MarketSecDesc = "Govt"
	MarketSecDescIndex  MarketSecDesc = "Index"
	MarketSecDescMMkt   MarketSecDesc = "M-Mkt"
	MarketSecDescMtge   MarketSecDesc = "Mtge"
	MarketSecDescMuni   MarketSecDesc = "Muni"
	MarketSecDescPfd    MarketSecDesc = "Pfd"
)

// SecurityType is the detailed security type.
type SecurityType string

const (
	SecurityTypeCommonStock   SecurityType = "Common Stock"
	SecurityTypeADR           SecurityType = "ADR"
	SecurityTypeGDR           SecurityType = "GDR"
	SecurityTypeETP           SecurityType = "ETP"
	SecurityTypeREIT          SecurityType = "REIT"
	SecurityTypePreference    SecurityType = "Preference"
	SecurityTypeRight         SecurityType = "Right"
	SecurityTypeWarrant       SecurityType = "Equity WRT"
	SecurityTypeEquityOption  SecurityType = "Equity Option"
	SecurityTypeIndexOption   SecurityType = "Index Option"
	SecurityTypeOpenEndFund   SecurityType = "Open-End Fund"
	SecurityTypeClosedEndFund SecurityType = "Closed-End Fund"
	SecurityTypeMutualFund    SecurityType = "Mutual Fund"
	SecurityTypeIndex         SecurityType = "Index"
)

// SecurityType2 is the broad security type. Option, Warrant and Pool carry
// extra request requirements, see FilterSet validation.
type SecurityType2 string

const (
	SecurityType2CommonStock       SecurityType2 = "Common Stock"
	SecurityType2Preference        SecurityType2 = "Preference"
	SecurityType2DepositaryReceipt SecurityType2 = "Depositary Receipt"
	SecurityType2MutualFund        SecurityType2 = "Mutual Fund"
	SecurityType2Option            SecurityType2 = "Option"
	SecurityType2Warrant           SecurityType2 = "Warrant"
	SecurityType2Future            SecurityType2 = "Future"
	SecurityType2Pool              SecurityType2 = "Pool"
	SecurityType2Corp              SecurityType2 = "Corp"
	SecurityType2Govt              SecurityType2 = "Govt"
	SecurityType2Muni              SecurityType2 = "Muni"
	SecurityType2Index             SecurityType2 = "Index"
	SecurityType2Spot              SecurityType2 = "Spot"
	SecurityType2Swap              SecurityType2 = "Swap"
)

// RequiresExpiration reports whether requests with this type must carry an
// expiration interval.
func (t SecurityType2) RequiresExpiration() bool {
	return t == SecurityType2Option || t == SecurityType2Warrant
}

// RequiresMaturity reports whether requests with this type must carry a
// maturity interval.
func (t SecurityType2) RequiresMaturity() bool {
	return t == SecurityType2Pool
}

// StateCode is a US state or Canadian province code.
type StateCode string

const (
	StateCodeAL StateCode = "AL"
	StateCodeCA StateCode = "CA"
	StateCodeFL StateCode = "FL"
	StateCodeIL StateCode = "IL"
	StateCodeMA StateCode = "MA"
	StateCodeNJ StateCode = "NJ"
	StateCodeNY StateCode = "NY"
	StateCodePA StateCode = "PA"
	StateCodeTX StateCode = "TX"
	StateCodeWA StateCode = "WA"
	StateCodeAB StateCode = "AB"
	StateCodeBC StateCode = "BC"
	StateCodeON StateCode = "ON"
	StateCodeQC StateCode = "QC"
)

// ValueKey names a field whose accepted values can be listed with OpMappingValues.
type ValueKey string

const (
	ValueKeyIDType        ValueKey = "idType"
	ValueKeyExchCode      ValueKey = "exchCode"
	ValueKeyMicCode       ValueKey = "micCode"
	ValueKeyCurrency      ValueKey = "currency"
	ValueKeyMarketSecDes  ValueKey = "marketSecDes"
	ValueKeySecurityType  ValueKey = "securityType"
	ValueKeySecurityType2 ValueKey = "securityType2"
	ValueKeyStateCode     ValueKey = "stateCode"
)

// ValueKeys returns every key accepted by the mapping values endpoint.
func ValueKeys() []ValueKey {
	return []ValueKey{
		ValueKeyIDType, ValueKeyExchCode, ValueKeyMicCode, ValueKeyCurrency,
		ValueKeyMarketSecDes, ValueKeySecurityType, ValueKeySecurityType2, ValueKeyStateCode,
	}
}

// Valid reports whether k is a known values key.
func (k ValueKey) Valid() bool {
	for _, v := range ValueKeys() {
		if v == k {
			return true
		}
	}
	return false
}
