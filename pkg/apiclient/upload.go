package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Upload is a single file sent as multipart/form-data.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Content     []byte
	Fields      map[string]string
}

// Upload posts a multipart form. The body is buffered so retries can replay it.
func (c *Client) Upload(ctx context.Context, endpoint string, upload Upload, opts ...RequestOption) (*Envelope, error) {
	if len(upload.Content) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "upload content is required")
	}
	field := strings.TrimSpace(upload.Field)
	if field == "" {
		field = "file"
	}
	filename := strings.TrimSpace(upload.Filename)
	if filename == "" {
		filename = "upload"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range upload.Fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "write multipart field")
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	contentType := upload.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(upload.Content)
	}
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "create multipart part")
	}
	if _, err := part.Write(upload.Content); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "write multipart content")
	}
	if err := writer.Close(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "close multipart body")
	}

	return c.send(ctx, http.MethodPost, endpoint, buf.Bytes(), writer.FormDataContentType(), opts)
}
