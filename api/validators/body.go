package validators

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/angelmondragon/pressing-admin/internal/validation"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
)

const maxBodyBytes = 1 << 20

type selfValidating interface {
	Validate() validation.Violations
}

// DecodeJSONBody decodes the request into dest and applies its validate tags, or its own
// Validate method when it has one.
func DecodeJSONBody(r *http.Request, dest any) error {
	if err := DecodeJSON(r, dest); err != nil {
		return err
	}
	if v, ok := dest.(selfValidating); ok {
		return v.Validate().Err()
	}
	return validation.Struct(dest).Err()
}

// DecodeJSON decodes the request into dest without validating it.
func DecodeJSON(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	return nil
}

// DecodeRawBody reads a JSON object without a schema, for payloads validated downstream.
func DecodeRawBody(r *http.Request) (json.RawMessage, error) {
	var raw json.RawMessage
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(&raw); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	return raw, nil
}
