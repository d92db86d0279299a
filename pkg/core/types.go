package core

// FigiRecord describes one instrument returned by the service.
// Only FIGI is always present.
type FigiRecord struct {
	FIGI                string `json:"figi"`
	SecurityType        string `json:"securityType,omitempty"`
	MarketSector        string `json:"marketSector,omitempty"`
	Ticker              string `json:"ticker,omitempty"`
	Name                string `json:"name,omitempty"`
	ExchCode            string `json:"exchCode,omitempty"`
	ShareClassFIGI      string `json:"shareClassFIGI,omitempty"`
	CompositeFIGI       string `json:"compositeFIGI,omitempty"`
	SecurityType2       string `json:"securityType2,omitempty"`
	SecurityDescription string `json:"securityDescription,omitempty"`
	Metadata            string `json:"metadata,omitempty"`
}

// HasCompositeFIGI reports whether the record names a composite FIGI.
func (r FigiRecord) HasCompositeFIGI() bool {
	return r.CompositeFIGI != ""
}

// HasShareClassFIGI reports whether the record names a share class FIGI.
func (r FigiRecord) HasShareClassFIGI() bool {
	return r.ShareClassFIGI != ""
}

// DisplayName returns the name, falling back to the ticker and then the FIGI.
func (r FigiRecord) DisplayName() string {
	switch {
	case r.Name != "":
		return r.Name
	case r.Ticker != "":
		return r.Ticker
	default:
		return r.FIGI
	}
}

// MappingData is the successful outcome of one mapping job.
// A job the service could not match succeeds with no records and a Warning.
type MappingData struct {
	Data    []FigiRecord `json:"data,omitempty"`
	Warning string       `json:"warning,omitempty"`
}

// Found reports whether the job matched at least one instrument.
func (d MappingData) Found() bool {
	return len(d.Data) > 0
}

// SearchData is one page of search results. Next is the cursor for the
// following page, empty on the last one.
type SearchData struct {
	Data []FigiRecord `json:"data"`
	Next string       `json:"next,omitempty"`
}

// FilterData is one page of filter results with the total match count.
type FilterData struct {
	Data  []FigiRecord `json:"data"`
	Next  string       `json:"next,omitempty"`
	Total int          `json:"total,omitempty"`
}

// MappingValues is the body of a mapping values response.
type MappingValues struct {
	Values []string `json:"values"`
}
