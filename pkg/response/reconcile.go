package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/bytedance/sonic"

	"openfigi/pkg/core"
)

// payloadKeys are the keys that mark a success payload. An element carrying
// none of them and no "error" string is malformed.
var payloadKeys = []string{"data", "warning", "values"}

// ParseSingle decodes a response whose body is one success payload or one
// {"error": ...} object. Non-2xx statuses are classified.
func ParseSingle[T any](resp *core.Response) (T, error) {
	var zero T
	if !resp.IsSuccess() {
		return zero, ClassifyResponse(resp)
	}
	value, message, err := decodeItem[T](resp.Body)
	if err != nil {
		return zero, core.NewDecodeError(resp.URL, resp.StatusCode, err)
	}
	if message != nil {
		return zero, core.NewItemError(resp.URL, resp.StatusCode, -1, *message)
	}
	return value, nil
}

// ParseBatch decodes a response whose body is a JSON array of payloads. Each
// element is decided on its own; a failed or malformed element never fails
// the call.
// Non-2xx statuses and a body that is not an array fail the whole call.
func ParseBatch[T any](resp *core.Response) (BatchResult[T], error) {
	if !resp.IsSuccess() {
		return BatchResult[T]{}, ClassifyResponse(resp)
	}

	var elements []json.RawMessage
	if err := sonic.Unmarshal(resp.Body, &elements); err != nil {
		return BatchResult[T]{}, core.NewDecodeError(resp.URL, resp.StatusCode, err)
	}

	items := make([]Result[T], len(elements))
	for i, raw := range elements {
		value, message, err := decodeItem[T](raw)
		switch {
		case err != nil:
			items[i] = Result[T]{Index: i, Err: core.NewMalformedItemError(resp.URL, resp.StatusCode, i, err)}
		case message != nil:
			items[i] = Result[T]{Index: i, Err: core.NewItemError(resp.URL, resp.StatusCode, i, *message)}
		default:
			items[i] = Result[T]{Index: i, Value: value}
		}
	}
	return NewBatchResult(items), nil
}

// decodeItem returns the payload, the service's message for an error
// element, or why the element could not be read.
func decodeItem[T any](raw []byte) (T, *string, error) {
	var zero T
	var fields map[string]json.RawMessage
	if err := sonic.Unmarshal(raw, &fields); err != nil {
		return zero, nil, err
	}
	if fields == nil {
		return zero, nil, errors.New("element is null")
	}

	if msg, ok := fields["error"]; ok && !isNull(msg) {
		var message string
		if err := sonic.Unmarshal(msg, &message); err != nil {
			return zero, nil, fmt.Errorf("error field: %w", err)
		}
		return zero, &message, nil
	}

	hasPayload := slices.ContainsFunc(payloadKeys, func(k string) bool {
		_, ok := fields[k]
		return ok
	})
	if !hasPayload {
		return zero, nil, errors.New("element has no data, warning or error")
	}

	var value T
	if err := sonic.Unmarshal(raw, &value); err != nil {
		return zero, nil, err
	}
	return value, nil, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

// ExpectLen fails unless the batch holds exactly n results.
func ExpectLen[T any](batch BatchResult[T], n int) error {
	if batch.Len() != n {
		return core.NewResultCountError("", n, batch.Len())
	}
	return nil
}

// ExpectOne unwraps a batch that must contain a single result. An item error
// becomes the call's error.
func ExpectOne[T any](batch BatchResult[T]) (T, error) {
	var zero T
	if err := ExpectLen(batch, 1); err != nil {
		return zero, err
	}
	r := batch.At(0)
	if r.Err != nil {
		return zero, r.Err
	}
	return r.Value, nil
}
