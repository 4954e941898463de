package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pressing-admin/pkg/enums"
)

// Paiement is a payment recorded against an order.
type Paiement struct {
	ID            int64               `json:"id"`
	CommandeID    int64               `json:"commandeId"`
	Montant       decimal.Decimal     `json:"montant"`
	Methode       enums.PaymentMethod `json:"methode"`
	Statut        enums.PaymentStatus `json:"statut"`
	Reference     string              `json:"reference,omitempty"`
	EstRembourse  bool                `json:"estRembourse"`
	Remboursement *Remboursement      `json:"remboursement,omitempty"`
	MotifRejet    string              `json:"motifRejet,omitempty"`
	DatePaiement  *time.Time          `json:"datePaiement,omitempty"`
	Timestamps
}

// Remboursement records a refund of a validated payment.
type Remboursement struct {
	MontantRembourse  decimal.Decimal `json:"montantRembourse"`
	DateRemboursement time.Time       `json:"dateRemboursement"`
	Motif             string          `json:"motif,omitempty"`
}

// Refundable reports whether the payment may still be refunded.
func (p Paiement) Refundable() bool {
	return p.Statut == enums.PaymentStatusValide && !p.EstRembourse
}
