package errors

import (
	"errors"
	"fmt"
)

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	UpstreamStatus int               `json:"upstream_status,omitempty"`
	FieldErrors    map[string]string `json:"field_errors,omitempty"`
}

type upstreamStatus interface {
	HTTPStatus() int
}

type fieldErrors interface {
	FieldErrors() map[string]string
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var status upstreamStatus
	if errors.As(err, &status) {
		d.UpstreamStatus = status.HTTPStatus()
	}
	var fields fieldErrors
	if errors.As(err, &fields) {
		d.FieldErrors = fields.FieldErrors()
	}

	return d
}
