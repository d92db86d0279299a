package core

import (
	"net/http"
	"time"
)

// Operation represents an OpenFIGI API endpoint.
type Operation int

// Operation constants define all supported endpoints.
const (
	// OpMapping maps third-party identifiers to FIGIs, in batches.
	OpMapping Operation = iota
	// OpSearch runs a free-text search, paginated by cursor.
	OpSearch
	// OpFilter lists instruments matching filter criteria, paginated by cursor.
	OpFilter
	// OpMappingValues lists the accepted values of one mapping field.
	OpMappingValues
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	if o < OpMapping || o > OpMappingValues {
		return "UNKNOWN"
	}
	return [...]string{
		"MAPPING",
		"SEARCH",
		"FILTER",
		"MAPPING_VALUES",
	}[o]
}

// Path returns the endpoint path relative to the API root.
func (o Operation) Path() string {
	switch o {
	case OpMapping:
		return "mapping"
	case OpSearch:
		return "search"
	case OpFilter:
		return "filter"
	case OpMappingValues:
		return "mapping/values"
	}
	return ""
}

// Method returns the HTTP method of the endpoint.
func (o Operation) Method() string {
	if o == OpMappingValues {
		return http.MethodGet
	}
	return http.MethodPost
}

// Bucket names the rate limit group the endpoint counts against.
func (o Operation) Bucket() string {
	switch o {
	case OpSearch, OpFilter:
		return "search"
	default:
		return "mapping"
	}
}

// RateLimit is a number of requests allowed per period.
type RateLimit struct {
	Requests int
	Period   time.Duration
}

// RateLimit returns the published limit for the endpoint.
// Search and filter share one budget.
func (o Operation) RateLimit(authenticated bool) RateLimit {
	if o.Bucket() == "search" {
		if authenticated {
			return RateLimit{Requests: 20, Period: time.Minute}
		}
		return RateLimit{Requests: 5, Period: time.Minute}
	}
	if authenticated {
		return RateLimit{Requests: 25, Period: 6 * time.Second}
	}
	return RateLimit{Requests: 25, Period: time.Minute}
}

// Operations returns every endpoint in declaration order.
func Operations() []Operation {
	return []Operation{OpMapping, OpSearch, OpFilter, OpMappingValues}
}
