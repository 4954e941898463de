// Package tickets renders the QR code printed on order tickets.
package tickets

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/models"
)

const (
	DefaultSize = 256
	minSize     = 64
	maxSize     = 1024
)

// Payload is the text encoded in an order ticket's QR code.
func Payload(order models.Commande) string {
	return fmt.Sprintf("PRESSING:%s:%d", strings.TrimSpace(order.Numero), order.ID)
}

// PNG renders the ticket QR for order. size is clamped to a printable range.
func PNG(order models.Commande, size int) ([]byte, error) {
	if order.ID == 0 || strings.TrimSpace(order.Numero) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required for ticket")
	}
	switch {
	case size <= 0:
		size = DefaultSize
	case size < minSize:
		size = minSize
	case size > maxSize:
		size = maxSize
	}
	png, err := qrcode.Encode(Payload(order), qrcode.Medium, size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding ticket qr")
	}
	return png, nil
}
