package payments

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pressing-admin/pkg/apiclient/apitest"
	"github.com/angelmondragon/pressing-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/models"
)

type paymentBackend struct {
	mu       sync.Mutex
	payments map[int64]*models.Paiement
}

func newPaymentBackend(t *testing.T, seed ...models.Paiement) (*apitest.Backend, Service) {
	t.Helper()
	pb := &paymentBackend{payments: map[int64]*models.Paiement{}}
	for i := range seed {
		p := seed[i]
		pb.payments[p.ID] = &p
	}
	backend := apitest.NewBackend(t)
	r := backend.Router
	r.Get("/admin/paiements/{id}", func(w http.ResponseWriter, r *http.Request) {
		p, ok := pb.find(r)
		if !ok {
			apitest.WriteError(w, http.StatusNotFound, "Paiement introuvable", nil)
			return
		}
		apitest.WriteData(w, http.StatusOK, p)
	})
	r.Get("/admin/commandes/{id}/paiements", func(w http.ResponseWriter, r *http.Request) {
		orderID, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		pb.mu.Lock()
		defer pb.mu.Unlock()
		out := []models.Paiement{}
		for _, p := range pb.payments {
			if p.CommandeID == orderID {
				out = append(out, *p)
			}
		}
		apitest.WriteData(w, http.StatusOK, out)
	})
	r.Patch("/admin/paiements/{id}/valider", func(w http.ResponseWriter, r *http.Request) {
		p, ok := pb.find(r)
		if !ok {
			apitest.WriteError(w, http.StatusNotFound, "Paiement introuvable", nil)
			return
		}
		pb.mu.Lock()
		p.Statut = enums.PaymentStatusValide
		pb.mu.Unlock()
		apitest.WriteData(w, http.StatusOK, p)
	})
	r.Patch("/admin/paiements/{id}/rejeter", func(w http.ResponseWriter, r *http.Request) {
		var body rejectBody
		if !apitest.DecodeBody(w, r, &body) {
			return
		}
		p, _ := pb.find(r)
		pb.mu.Lock()
		p.Statut = enums.PaymentStatusEchoue
		p.MotifRejet = body.Motif
		pb.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/admin/paiements/{id}/rembourser", func(w http.ResponseWriter, r *http.Request) {
		var body RefundInput
		if !apitest.DecodeBody(w, r, &body) {
			return
		}
		p, _ := pb.find(r)
		pb.mu.Lock()
		p.EstRembourse = true
		p.Remboursement = &models.Remboursement{
			MontantRembourse:  body.MontantRembourse,
			DateRemboursement: time.Date(2024, 5, 3, 11, 0, 0, 0, time.UTC),
			Motif:             body.Motif,
		}
		pb.mu.Unlock()
		apitest.WriteData(w, http.StatusOK, p)
	})

	client, _ := backend.Client(t)
	svc, err := NewService(client)
	require.NoError(t, err)
	return backend, svc
}

func (pb *paymentBackend) find(r *http.Request) (*models.Paiement, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return nil, false
	}
	pb.mu.Lock()
	defer pb.mu.Unlock()
	p, ok := pb.payments[id]
	return p, ok
}

func payment(id int64, status enums.PaymentStatus, amount int64) models.Paiement {
	return models.Paiement{
		ID: id, CommandeID: 42, Montant: decimal.NewFromInt(amount),
		Methode: enums.PaymentMethodMobileMoney, Statut: status,
	}
}

func TestRefundValidPayment(t *testing.T) {
	_, svc := newPaymentBackend(t, payment(1, enums.PaymentStatusValide, 12000))

	refunded, err := svc.Rembourser(context.Background(), 1, RefundInput{MontantRembourse: decimal.NewFromInt(5000), Motif: "Article abîmé"})
	require.NoError(t, err)
	assert.True(t, refunded.EstRembourse)
	require.NotNil(t, refunded.Remboursement)
	assert.True(t, refunded.Remboursement.MontantRembourse.Equal(decimal.NewFromInt(5000)))
}

func TestRefundRefusedLocally(t *testing.T) {
	alreadyRefunded := payment(3, enums.PaymentStatusValide, 12000)
	alreadyRefunded.EstRembourse = true
	backend, svc := newPaymentBackend(t,
		payment(2, enums.PaymentStatusEnAttente, 12000),
		alreadyRefunded,
		payment(4, enums.PaymentStatusValide, 3000),
	)
	ctx := context.Background()
	amount := RefundInput{MontantRembourse: decimal.NewFromInt(1000)}

	_, err := svc.Rembourser(ctx, 2, amount)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
	_, err = svc.Rembourser(ctx, 3, amount)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
	_, err = svc.Rembourser(ctx, 4, RefundInput{MontantRembourse: decimal.NewFromInt(5000)})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	_, err = svc.Rembourser(ctx, 4, RefundInput{})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	assert.Equal(t, 0, backend.Calls(http.MethodPost, "/api/admin/paiements/4/rembourser"))
}

func TestValiderAndRejeter(t *testing.T) {
	_, svc := newPaymentBackend(t, payment(5, enums.PaymentStatusEnAttente, 2000), payment(6, enums.PaymentStatusEnAttente, 2000))
	ctx := context.Background()

	validated, err := svc.Valider(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusValide, validated.Statut)

	_, err = svc.Rejeter(ctx, 6, "  ")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	rejected, err := svc.Rejeter(ctx, 6, "Transaction refusée")
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusEchoue, rejected.Statut)
	assert.Equal(t, "Transaction refusée", rejected.MotifRejet)
}

func TestListForOrder(t *testing.T) {
	_, svc := newPaymentBackend(t, payment(7, enums.PaymentStatusValide, 1000))
	list, err := svc.ListForOrder(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(7), list[0].ID)

	list, err = svc.ListForOrder(context.Background(), 43)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateInputValidate(t *testing.T) {
	v := CreateInput{CommandeID: 1, Montant: decimal.NewFromInt(10), Methode: "cheque"}.Validate()
	assert.True(t, v.Has("methode"))
	v = CreateInput{Methode: enums.PaymentMethodEspeces}.Validate()
	assert.True(t, v.Has("commandeId"))
	assert.True(t, v.Has("montant"))
}
