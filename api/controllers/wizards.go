package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pressing-admin/api/responses"
	"github.com/angelmondragon/pressing-admin/api/validators"
	"github.com/angelmondragon/pressing-admin/internal/orders"
	"github.com/angelmondragon/pressing-admin/internal/tours"
	"github.com/angelmondragon/pressing-admin/internal/validation"
	"github.com/angelmondragon/pressing-admin/internal/wizard"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
	"github.com/angelmondragon/pressing-admin/pkg/models"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
)

// TarifLister lists the per-km delivery bands.
type TarifLister interface {
	List(ctx context.Context, params pagination.Params) (*pagination.Page[models.TarifKilometrique], error)
}

// Wizards serves the order and tour creation flows. Each request loads the draft, applies one
// action and saves it back.
type Wizards struct {
	Drafts     wizard.DraftStore
	Orders     orders.Service
	Tours      tours.Service
	Promotions orders.PromotionLookup
	Tarifs     TarifLister
	Logger     *logger.Logger
}

type flow interface {
	Set(field string, value any) error
	Next() bool
	Back() bool
	Steps() []string
	Step() string
	Index() int
	IsLast() bool
	Errors() validation.Violations
	Submitted() bool

	save(ctx context.Context, store wizard.DraftStore, id string) error
	submit(ctx context.Context) (any, error)
	describe(view *wizardView)
}

type orderFlow struct {
	*orders.Wizard
	svc    orders.Service
	lookup orders.PromotionLookup
}

func (f orderFlow) save(ctx context.Context, store wizard.DraftStore, id string) error {
	return wizard.SaveState(ctx, store, orders.DraftKind, id, f.State())
}

func (f orderFlow) submit(ctx context.Context) (any, error) {
	return f.Submit(ctx, f.svc)
}

func (f orderFlow) describe(view *wizardView) {
	view.Form = f.Form()
	summary := f.Summary()
	view.Summary = &summary
}

type tourFlow struct {
	*tours.Wizard
	svc tours.Service
}

func (f tourFlow) save(ctx context.Context, store wizard.DraftStore, id string) error {
	return wizard.SaveState(ctx, store, tours.DraftKind, id, f.State())
}

func (f tourFlow) submit(ctx context.Context) (any, error) {
	return f.Submit(ctx, f.svc)
}

func (f tourFlow) describe(view *wizardView) {
	view.Form = f.Form()
	view.Window = f.Window()
}

type wizardView struct {
	ID        string                `json:"id"`
	Kind      string                `json:"kind"`
	Steps     []string              `json:"steps"`
	Step      string                `json:"step"`
	Index     int                   `json:"index"`
	IsLast    bool                  `json:"isLast"`
	Form      any                   `json:"form"`
	Errors    validation.Violations `json:"errors"`
	Submitted bool                  `json:"submitted"`
	Moved     *bool                 `json:"moved,omitempty"`
	Summary   *orders.Summary       `json:"summary,omitempty"`
	Window    string                `json:"window,omitempty"`
}

type submitResponse struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Created any    `json:"created"`
}

type promotionRequest struct {
	Code string `json:"code" validate:"max=30"`
}

func newView(kind, id string, f flow) wizardView {
	view := wizardView{
		ID:        id,
		Kind:      kind,
		Steps:     f.Steps(),
		Step:      f.Step(),
		Index:     f.Index(),
		IsLast:    f.IsLast(),
		Errors:    f.Errors(),
		Submitted: f.Submitted(),
	}
	f.describe(&view)
	return view
}

func wizardKind(r *http.Request) (string, error) {
	kind := chi.URLParam(r, "kind")
	switch kind {
	case orders.DraftKind, tours.DraftKind:
		return kind, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeNotFound, "unknown wizard").WithDetails(map[string]string{"kind": kind})
}

func (h *Wizards) start(ctx context.Context, kind string) (flow, error) {
	if kind == tours.DraftKind {
		return tourFlow{Wizard: tours.NewWizard(), svc: h.Tours}, nil
	}
	var tarifs []models.TarifKilometrique
	if h.Tarifs != nil {
		page, err := h.Tarifs.List(ctx, pagination.Params{Page: 1, PerPage: pagination.MaxPerPage})
		if err != nil {
			return nil, err
		}
		tarifs = page.Data
	}
	return orderFlow{Wizard: orders.NewWizard(tarifs), svc: h.Orders, lookup: h.Promotions}, nil
}

func (h *Wizards) load(ctx context.Context, kind, id string) (flow, error) {
	if kind == tours.DraftKind {
		state, err := wizard.LoadState(ctx, h.Drafts, tours.DraftKind, id, tours.NewForm)
		if err != nil {
			return nil, err
		}
		return tourFlow{Wizard: tours.RestoreWizard(state), svc: h.Tours}, nil
	}
	state, err := wizard.LoadState(ctx, h.Drafts, orders.DraftKind, id, orders.NewForm)
	if err != nil {
		return nil, err
	}
	return orderFlow{Wizard: orders.RestoreWizard(state), svc: h.Orders, lookup: h.Promotions}, nil
}

// withDraft loads the draft named by the route, runs act and saves the result.
func (h *Wizards) withDraft(w http.ResponseWriter, r *http.Request, act func(ctx context.Context, f flow, view *wizardView) error) {
	ctx := r.Context()
	kind, err := wizardKind(r)
	if err != nil {
		responses.WriteError(ctx, h.Logger, w, err)
		return
	}
	id := chi.URLParam(r, "draftId")
	ctx = h.Logger.WithDraft(ctx, kind, id)
	f, err := h.load(ctx, kind, id)
	if err != nil {
		responses.WriteError(ctx, h.Logger, w, err)
		return
	}
	var view wizardView
	if err := act(ctx, f, &view); err != nil {
		responses.WriteError(ctx, h.Logger, w, err)
		return
	}
	if err := f.save(ctx, h.Drafts, id); err != nil {
		responses.WriteError(ctx, h.Logger, w, err)
		return
	}
	moved := view.Moved
	view = newView(kind, id, f)
	view.Moved = moved
	responses.WriteSuccess(w, view)
}

// Create starts a new draft.
func (h *Wizards) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		kind, err := wizardKind(r)
		if err != nil {
			responses.WriteError(ctx, h.Logger, w, err)
			return
		}
		f, err := h.start(ctx, kind)
		if err != nil {
			responses.WriteError(ctx, h.Logger, w, err)
			return
		}
		id := wizard.NewDraftID()
		if err := f.save(ctx, h.Drafts, id); err != nil {
			responses.WriteError(ctx, h.Logger, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newView(kind, id, f))
	}
}

func (h *Wizards) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		kind, err := wizardKind(r)
		if err != nil {
			responses.WriteError(ctx, h.Logger, w, err)
			return
		}
		id := chi.URLParam(r, "draftId")
		f, err := h.load(ctx, kind, id)
		if err != nil {
			responses.WriteError(ctx, h.Logger, w, err)
			return
		}
		responses.WriteSuccess(w, newView(kind, id, f))
	}
}

// Update assigns the fields of a JSON object in key order. Rejected values are reported in the
// view errors, the other fields are kept.
func (h *Wizards) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fields map[string]json.RawMessage
		if err := validators.DecodeJSON(r, &fields); err != nil {
			responses.WriteError(r.Context(), h.Logger, w, err)
			return
		}
		keys := make([]string, 0, len(fields))
		for key := range fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		h.withDraft(w, r, func(_ context.Context, f flow, _ *wizardView) error {
			if f.Submitted() {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "wizard already submitted")
			}
			for _, key := range keys {
				_ = f.Set(key, fields[key])
			}
			return nil
		})
	}
}

// Next validates the active step and advances when it is clean.
func (h *Wizards) Next() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.withDraft(w, r, func(_ context.Context, f flow, view *wizardView) error {
			moved := f.Next()
			view.Moved = &moved
			return nil
		})
	}
}

func (h *Wizards) Back() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.withDraft(w, r, func(_ context.Context, f flow, view *wizardView) error {
			moved := f.Back()
			view.Moved = &moved
			return nil
		})
	}
}

// ApplyPromotion attaches a promotion code to an order draft. An empty code removes it.
func (h *Wizards) ApplyPromotion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body promotionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), h.Logger, w, err)
			return
		}
		h.withDraft(w, r, func(ctx context.Context, f flow, _ *wizardView) error {
			of, ok := f.(orderFlow)
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, "promotions only apply to orders")
			}
			if of.lookup == nil {
				return pkgerrors.New(pkgerrors.CodeDependency, "promotion lookup unavailable")
			}
			return of.ApplyPromotion(ctx, of.lookup, body.Code)
		})
	}
}

// Submit sends the draft to the backend from its final step. The draft is deleted once the
// backend accepts it and kept with the reported errors otherwise.
func (h *Wizards) Submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		kind, err := wizardKind(r)
		if err != nil {
			responses.WriteError(ctx, h.Logger, w, err)
			return
		}
		id := chi.URLParam(r, "draftId")
		ctx = h.Logger.WithDraft(ctx, kind, id)
		f, err := h.load(ctx, kind, id)
		if err != nil {
			responses.WriteError(ctx, h.Logger, w, err)
			return
		}
		created, err := f.submit(ctx)
		if err != nil {
			if saveErr := f.save(ctx, h.Drafts, id); saveErr != nil {
				h.Logger.Error(ctx, "wizard draft save failed", saveErr)
			}
			responses.WriteError(ctx, h.Logger, w, err)
			return
		}
		if err := h.Drafts.Delete(ctx, kind, id); err != nil {
			h.Logger.Error(ctx, "wizard draft delete failed", err)
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, submitResponse{ID: id, Kind: kind, Created: created})
	}
}

// Discard drops a draft.
func (h *Wizards) Discard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		kind, err := wizardKind(r)
		if err != nil {
			responses.WriteError(ctx, h.Logger, w, err)
			return
		}
		if err := h.Drafts.Delete(ctx, kind, chi.URLParam(r, "draftId")); err != nil {
			responses.WriteError(ctx, h.Logger, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
