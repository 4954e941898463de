package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/angelmondragon/pressing-admin/pkg/pagination"
)

// Requester is the surface domain services depend on.
type Requester interface {
	Get(ctx context.Context, endpoint string, opts ...RequestOption) (*Envelope, error)
	Post(ctx context.Context, endpoint string, body any, opts ...RequestOption) (*Envelope, error)
	Put(ctx context.Context, endpoint string, body any, opts ...RequestOption) (*Envelope, error)
	Patch(ctx context.Context, endpoint string, body any, opts ...RequestOption) (*Envelope, error)
	Delete(ctx context.Context, endpoint string, opts ...RequestOption) (*Envelope, error)
	Upload(ctx context.Context, endpoint string, upload Upload, opts ...RequestOption) (*Envelope, error)
}

var _ Requester = (*Client)(nil)

// GetData fetches endpoint and decodes its data into T.
func GetData[T any](ctx context.Context, api Requester, endpoint string, opts ...RequestOption) (T, error) {
	env, err := api.Get(ctx, endpoint, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return DecodeData[T](env)
}

// GetList fetches endpoint and decodes a flat or paginated list.
func GetList[T any](ctx context.Context, api Requester, endpoint string, opts ...RequestOption) (*pagination.Page[T], error) {
	env, err := api.Get(ctx, endpoint, opts...)
	if err != nil {
		return nil, err
	}
	return DecodeList[T](env)
}

// GetPage fetches a list with pagination and filter params.
func GetPage[T any](ctx context.Context, api Requester, endpoint string, params pagination.Params) (*pagination.Page[T], error) {
	return GetList[T](ctx, api, endpoint, WithQuery(params.Query()))
}

// Path joins a base path with an id and optional trailing segments.
func Path(base string, id int64, segments ...string) string {
	parts := []string{strings.TrimRight(base, "/"), strconv.FormatInt(id, 10)}
	for _, segment := range segments {
		parts = append(parts, url.PathEscape(strings.Trim(segment, "/")))
	}
	return strings.Join(parts, "/")
}

// PathOf joins a base path with an escaped string key.
func PathOf(base, key string, segments ...string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), url.PathEscape(key)) + joinSegments(segments)
}

func joinSegments(segments []string) string {
	var b strings.Builder
	for _, segment := range segments {
		b.WriteString("/")
		b.WriteString(url.PathEscape(strings.Trim(segment, "/")))
	}
	return b.String()
}
