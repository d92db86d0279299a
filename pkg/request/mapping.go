package request

import (
	"fmt"

	"openfigi/pkg/core"
)

// MappingRequest is one mapping job: an identifier and optional criteria that
// narrow the match.
type MappingRequest struct {
	IDType  core.IDType `json:"idType"`
	IDValue IDValue     `json:"idValue"`
	FilterSet
}

// Validate runs the required-field checks, the filter rules and the mapping
// rules, in that order.
func (r *MappingRequest) Validate() error {
	if r.IDType == "" {
		return core.NewValidationError(core.ErrCodeMissingField, "idType", "idType is required")
	}
	if r.IDValue.IsZero() {
		return core.NewValidationError(core.ErrCodeMissingField, "idValue", "idValue is required")
	}
	if !r.IDType.Valid() {
		return core.NewValidationError(core.ErrCodeInvalidRequest, "idType",
			fmt.Sprintf("unknown idType %q", r.IDType))
	}
	if err := r.FilterSet.Validate(); err != nil {
		return err
	}
	if r.IDType.RequiresSecurityType2() && r.SecurityType2 == "" {
		return core.NewValidationError(core.ErrCodeInvalidRequest, "securityType2",
			"securityType2 is required when idType is BASE_TICKER or ID_EXCH_SYMBOL")
	}
	return nil
}

// MappingBuilder provides a fluent interface for constructing mapping jobs.
//
// Example:
//
//	req, err := request.NewMappingBuilder().
//	    IDType(core.IDTypeISIN).
//	    IDValue("US4592001014").
//	    ExchCode(core.ExchCodeUS).
//	    Build()
type MappingBuilder struct {
	filterSetters[*MappingBuilder]
	req MappingRequest
}

// NewMappingBuilder creates an empty mapping builder.
func NewMappingBuilder() *MappingBuilder {
	b := &MappingBuilder{}
	b.filterSetters = newFilterSetters(b, &b.req.FilterSet)
	return b
}

// IDType sets the kind of identifier.
func (b *MappingBuilder) IDType(t core.IDType) *MappingBuilder {
	b.req.IDType = t
	return b
}

// IDValue sets a string identifier.
func (b *MappingBuilder) IDValue(v string) *MappingBuilder {
	b.req.IDValue = StringID(v)
	return b
}

// IDNumber sets a numeric identifier, sent as a JSON number.
func (b *MappingBuilder) IDNumber(n int64) *MappingBuilder {
	b.req.IDValue = NumberID(n)
	return b
}

// Build validates and returns the request.
func (b *MappingBuilder) Build() (*MappingRequest, error) {
	req := b.req
	req.FilterSet = b.req.FilterSet.Clone()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}
