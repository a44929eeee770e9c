package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// ErrMalformedBody is wrapped by DecodeRaw when the payload is not valid JSON.
var ErrMalformedBody = errors.New("malformed json body")

// DecodeRaw reads the request body as loosely typed JSON. Numbers are kept as
// json.Number so callers can tell integers from decimals. An empty body or a
// literal null decodes to nil.
func DecodeRaw(r *http.Request) (any, error) {
	if r == nil || r.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, NewAppError(CodeValidation, "Request body could not be read.", http.StatusBadRequest, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, NewAppError(CodeValidation, "Request body must be valid JSON.", http.StatusBadRequest, errors.Join(ErrMalformedBody, err))
	}
	if dec.More() {
		return nil, NewAppError(CodeValidation, "Request body must be valid JSON.", http.StatusBadRequest, ErrMalformedBody)
	}
	return out, nil
}

// DecodeObject is DecodeRaw restricted to JSON objects. A nil map is returned
// for an absent body.
func DecodeObject(r *http.Request) (map[string]any, error) {
	raw, err := DecodeRaw(r)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, Schema("Request body must be a JSON object.")
	}
	return obj, nil
}
