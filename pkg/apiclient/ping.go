package apiclient

import (
	"context"
	"net/http"

	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
)

// Ping reports whether the backend answers HTTP. Any status counts as reachable; only transport
// failures are errors. It bypasses retries and the session.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "api client not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build ping request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "backend unreachable")
	}
	_ = resp.Body.Close()
	return nil
}
