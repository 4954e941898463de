package models

import (
	"time"

	"github.com/angelmondragon/pressing-admin/pkg/enums"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

// Tournee is a courier's round of collections and deliveries.
type Tournee struct {
	ID          int64                 `json:"id"`
	Numero      string                `json:"numero"`
	DateTournee types.Date            `json:"dateTournee"`
	HeureDebut  types.Clock           `json:"heureDebut"`
	HeureFin    types.Clock           `json:"heureFin"`
	LivreurID   int64                 `json:"livreurId"`
	Livreur     *Utilisateur          `json:"livreur,omitempty"`
	Operations  []OperationLogistique `json:"operations,omitempty"`
	Statut      enums.TourStatus      `json:"statut"`
	Notes       string                `json:"notes,omitempty"`
	Timestamps
}

// OperationLogistique is a single collection or delivery tied to one order within a tour.
type OperationLogistique struct {
	ID            int64                 `json:"id"`
	TourneeID     int64                 `json:"tourneeId"`
	CommandeID    int64                 `json:"commandeId"`
	Commande      *Commande             `json:"commande,omitempty"`
	Type          enums.OperationType   `json:"type"`
	Ordre         int                   `json:"ordre,omitempty"`
	DatePrevue    types.Date            `json:"datePrevue"`
	DateEffective *time.Time            `json:"dateEffective,omitempty"`
	Statut        enums.OperationStatus `json:"statut"`
	Commentaire   string                `json:"commentaire,omitempty"`
	Preuves       []Preuve              `json:"preuves,omitempty"`
}

// Preuve is a proof-of-completion file attached to an operation.
type Preuve struct {
	ID          int64     `json:"id"`
	OperationID int64     `json:"operationId"`
	URL         string    `json:"url"`
	Type        string    `json:"type,omitempty"`
	Nom         string    `json:"nom,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
