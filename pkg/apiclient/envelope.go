package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
)

// ErrUnexpectedShape is returned when a response matches none of the known envelope variants.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// Envelope is the standard backend response wrapper.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Errors  json.RawMessage `json:"errors,omitempty"`
}

// decodeEnvelope reads a 2xx body. Bodies without the envelope keys are treated as bare data.
func decodeEnvelope(body []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &Envelope{Success: true}, nil
	}
	if trimmed[0] == '{' {
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &keys); err != nil {
			return nil, err
		}
		_, hasData := keys["data"]
		_, hasSuccess := keys["success"]
		if hasData || hasSuccess {
			var env Envelope
			if err := json.Unmarshal(trimmed, &env); err != nil {
				return nil, err
			}
			if !hasSuccess {
				env.Success = true
			}
			return &env, nil
		}
	} else if !json.Valid(trimmed) {
		return nil, fmt.Errorf("invalid json body")
	}
	return &Envelope{Success: true, Data: append(json.RawMessage(nil), trimmed...)}, nil
}

// DecodeData unwraps the envelope data into T.
func DecodeData[T any](env *Envelope) (T, error) {
	var out T
	if env == nil || isEmpty(env.Data) {
		return out, pkgerrors.Wrap(pkgerrors.CodeDependency, ErrUnexpectedShape, "response carried no data")
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("%w: %v", ErrUnexpectedShape, err), "decode response data")
	}
	return out, nil
}

// DecodeList accepts exactly two shapes: a flat array, or {data: [...], meta: {...}}.
func DecodeList[T any](env *Envelope) (*pagination.Page[T], error) {
	if env == nil || isEmpty(env.Data) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ErrUnexpectedShape, "list response carried no data")
	}
	data := bytes.TrimSpace(env.Data)

	switch data[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, listShapeError(err)
		}
		return &pagination.Page[T]{Data: nonNil(items)}, nil
	case '{':
		var paged struct {
			Data json.RawMessage  `json:"data"`
			Meta *pagination.Meta `json:"meta"`
		}
		if err := json.Unmarshal(data, &paged); err != nil {
			return nil, listShapeError(err)
		}
		inner := bytes.TrimSpace(paged.Data)
		if len(inner) == 0 || inner[0] != '[' {
			return nil, listShapeError(errors.New("paginated object without a data array"))
		}
		var items []T
		if err := json.Unmarshal(inner, &items); err != nil {
			return nil, listShapeError(err)
		}
		return &pagination.Page[T]{Data: nonNil(items), Meta: paged.Meta}, nil
	default:
		return nil, listShapeError(errors.New("list data is neither an array nor a paginated object"))
	}
}

func listShapeError(cause error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("%w: %v", ErrUnexpectedShape, cause), "decode list response")
}

func isEmpty(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
