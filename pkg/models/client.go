package models

import "strings"

// Client is a pressing customer.
type Client struct {
	ID               int64  `json:"id"`
	Nom              string `json:"nom"`
	Prenom           string `json:"prenom,omitempty"`
	Email            string `json:"email,omitempty"`
	Telephone        string `json:"telephone,omitempty"`
	Adresse          string `json:"adresse,omitempty"`
	NombreCommandes  int    `json:"nombreCommandes,omitempty"`
	PremiereCommande bool   `json:"premiereCommande,omitempty"`
	Timestamps
}

func (c Client) FullName() string {
	return strings.TrimSpace(c.Prenom + " " + c.Nom)
}

// Utilisateur is an authenticated operator or courier.
type Utilisateur struct {
	ID        int64  `json:"id"`
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom,omitempty"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Telephone string `json:"telephone,omitempty"`
}

func (u Utilisateur) FullName() string {
	return strings.TrimSpace(u.Prenom + " " + u.Nom)
}
