package request

import "openfigi/pkg/core"

// filterSetters gives every request builder the same chainable filter
// setters. B is the builder type returned for chaining.
type filterSetters[B any] struct {
	self B
	fs   *FilterSet
}

func newFilterSetters[B any](self B, fs *FilterSet) filterSetters[B] {
	return filterSetters[B]{self: self, fs: fs}
}

func (s filterSetters[B]) ExchCode(v core.ExchCode) B {
	s.fs.ExchCode = v
	return s.self
}

func (s filterSetters[B]) MicCode(v core.MicCode) B {
	s.fs.MicCode = v
	return s.self
}

func (s filterSetters[B]) Currency(v core.Currency) B {
	s.fs.Currency = v
	return s.self
}

func (s filterSetters[B]) MarketSecDes(v core.MarketSecDesc) B {
	s.fs.MarketSecDes = v
	return s.self
}

func (s filterSetters[B]) SecurityType(v core.SecurityType) B {
	s.fs.SecurityType = v
	return s.self
}

func (s filterSetters[B]) SecurityType2(v core.SecurityType2) B {
	s.fs.SecurityType2 = v
	return s.self
}

func (s filterSetters[B]) IncludeUnlistedEquities(v bool) B {
	s.fs.IncludeUnlistedEquities = &v
	return s.self
}

func (s filterSetters[B]) OptionType(v core.OptionType) B {
	s.fs.OptionType = v
	return s.self
}

func (s filterSetters[B]) Strike(v *NumberRange) B {
	s.fs.Strike = v
	return s.self
}

func (s filterSetters[B]) ContractSize(v *NumberRange) B {
	s.fs.ContractSize = v
	return s.self
}

func (s filterSetters[B]) Coupon(v *NumberRange) B {
	s.fs.Coupon = v
	return s.self
}

func (s filterSetters[B]) Expiration(v *DateRange) B {
	s.fs.Expiration = v
	return s.self
}

func (s filterSetters[B]) Maturity(v *DateRange) B {
	s.fs.Maturity = v
	return s.self
}

func (s filterSetters[B]) StateCode(v core.StateCode) B {
	s.fs.StateCode = v
	return s.self
}

// Filters replaces every filter criterion with fs.
func (s filterSetters[B]) Filters(fs FilterSet) B {
	*s.fs = fs
	return s.self
}
