package request

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
)

// IDValue is the identifier being mapped. The service accepts either a JSON
// string or a JSON number; the original form is kept so a request
// serializes back exactly as it was given.
type IDValue struct {
	raw    string
	number bool
}

// StringID returns an identifier sent as a JSON string.
func StringID(s string) IDValue {
	return IDValue{raw: s}
}

// NumberID returns an identifier sent as a JSON number.
func NumberID(n int64) IDValue {
	return IDValue{raw: strconv.FormatInt(n, 10), number: true}
}

// IsZero reports whether no identifier was given.
func (v IDValue) IsZero() bool {
	return v.raw == ""
}

// IsNumber reports whether the identifier is sent as a JSON number.
func (v IDValue) IsNumber() bool {
	return v.number
}

func (v IDValue) String() string {
	return v.raw
}

func (v IDValue) MarshalJSON() ([]byte, error) {
	if v.number {
		return []byte(v.raw), nil
	}
	return sonic.Marshal(v.raw)
}

func (v *IDValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("idValue must be a string or a number: %s", data)
	}
	*v = IDValue{raw: string(data), number: true}
	return nil
}
