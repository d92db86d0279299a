package openfigi

import (
	"context"

	"openfigi/pkg/core"
	"openfigi/pkg/response"
)

// MappingValues lists the values the mapping endpoint accepts for key, such
// as every idType or exchCode.
func (c *Client) MappingValues(ctx context.Context, key core.ValueKey) ([]string, error) {
	if key == "" {
		return nil, core.NewValidationError(core.ErrCodeMissingField, "key", "key is required")
	}

	resp, err := c.do(ctx, core.OpMappingValues, core.OpMappingValues.Path()+"/"+string(key), nil)
	if err != nil {
		return nil, err
	}

	data, err := response.ParseSingle[core.MappingValues](resp)
	if err != nil {
		return nil, err
	}
	return data.Values, nil
}
