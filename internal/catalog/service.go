// Package catalog manages the reference entities used to price and schedule orders.
package catalog

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/angelmondragon/pressing-admin/internal/resource"
	"github.com/angelmondragon/pressing-admin/internal/validation"
	"github.com/angelmondragon/pressing-admin/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/models"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
)

// Resource names as exposed by the dashboard.
const (
	Services            = "services"
	TypesLinge          = "types-linge"
	Temperatures        = "temperatures"
	OptionsTraitement   = "options-traitement"
	DelaisLivraison     = "delais-livraison"
	CreneauxCollecte    = "creneaux-collecte"
	TarifsKilometriques = "tarifs-kilometriques"
)

// Catalog groups the typed resources.
type Catalog struct {
	Services            *resource.Resource[models.Service, ServiceInput]
	TypesLinge          *resource.Resource[models.TypeLinge, LabelInput]
	Temperatures        *resource.Resource[models.Temperature, TemperatureInput]
	OptionsTraitement   *resource.Resource[models.OptionTraitement, OptionTraitementInput]
	DelaisLivraison     *resource.Resource[models.DelaiLivraison, DelaiLivraisonInput]
	CreneauxCollecte    *resource.Resource[models.CreneauCollecte, CreneauCollecteInput]
	TarifsKilometriques *resource.Resource[models.TarifKilometrique, TarifKilometriqueInput]

	entries map[string]Entry
}

// New binds every catalog resource to its admin and public paths.
func New(api apiclient.Requester) (*Catalog, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "api client required")
	}
	c := &Catalog{entries: map[string]Entry{}}
	var err error
	if c.Services, err = resource.New[models.Service, ServiceInput](api, "/admin/services", "/services"); err != nil {
		return nil, err
	}
	if c.TypesLinge, err = resource.New[models.TypeLinge, LabelInput](api, "/admin/types-linge", "/types-linge"); err != nil {
		return nil, err
	}
	if c.Temperatures, err = resource.New[models.Temperature, TemperatureInput](api, "/admin/temperatures", "/temperatures"); err != nil {
		return nil, err
	}
	if c.OptionsTraitement, err = resource.New[models.OptionTraitement, OptionTraitementInput](api, "/admin/options-traitement", "/options-traitement"); err != nil {
		return nil, err
	}
	if c.DelaisLivraison, err = resource.New[models.DelaiLivraison, DelaiLivraisonInput](api, "/admin/delais-livraison", "/delais-livraison"); err != nil {
		return nil, err
	}
	if c.CreneauxCollecte, err = resource.New[models.CreneauCollecte, CreneauCollecteInput](api, "/admin/creneaux-collecte", "/creneaux-collecte"); err != nil {
		return nil, err
	}
	if c.TarifsKilometriques, err = resource.New[models.TarifKilometrique, TarifKilometriqueInput](api, "/admin/tarifs-kilometriques", "/tarifs-kilometriques"); err != nil {
		return nil, err
	}

	c.entries[Services] = erase(c.Services)
	c.entries[TypesLinge] = erase(c.TypesLinge)
	c.entries[Temperatures] = erase(c.Temperatures)
	c.entries[OptionsTraitement] = erase(c.OptionsTraitement)
	c.entries[DelaisLivraison] = erase(c.DelaisLivraison)
	c.entries[CreneauxCollecte] = erase(c.CreneauxCollecte)
	c.entries[TarifsKilometriques] = erase(c.TarifsKilometriques)
	return c, nil
}

// Lookup returns the untyped entry for a resource name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	entry, ok := c.entries[name]
	return entry, ok
}

// Names lists the resource names in a stable order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entry is a catalog resource driven by raw JSON payloads.
type Entry interface {
	List(ctx context.Context, params pagination.Params) (any, error)
	ListPublic(ctx context.Context) (any, error)
	Get(ctx context.Context, id int64) (any, error)
	Create(ctx context.Context, payload json.RawMessage) (any, error)
	Update(ctx context.Context, id int64, payload json.RawMessage) (any, error)
	Delete(ctx context.Context, id int64) error
	ToggleActive(ctx context.Context, id int64) (any, error)
	Archive(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
}

type validatable interface {
	Validate() validation.Violations
}

type erased[T any, I validatable] struct {
	res *resource.Resource[T, I]
}

func erase[T any, I validatable](res *resource.Resource[T, I]) Entry {
	return erased[T, I]{res: res}
}

func (e erased[T, I]) List(ctx context.Context, params pagination.Params) (any, error) {
	return e.res.List(ctx, params)
}

func (e erased[T, I]) ListPublic(ctx context.Context) (any, error) {
	return e.res.ListPublic(ctx)
}

func (e erased[T, I]) Get(ctx context.Context, id int64) (any, error) {
	return e.res.Get(ctx, id)
}

func (e erased[T, I]) Create(ctx context.Context, payload json.RawMessage) (any, error) {
	input, err := decodeInput[I](payload)
	if err != nil {
		return nil, err
	}
	return e.res.Create(ctx, input)
}

func (e erased[T, I]) Update(ctx context.Context, id int64, payload json.RawMessage) (any, error) {
	input, err := decodeInput[I](payload)
	if err != nil {
		return nil, err
	}
	return e.res.Update(ctx, id, input)
}

func (e erased[T, I]) Delete(ctx context.Context, id int64) error {
	return e.res.Delete(ctx, id)
}

func (e erased[T, I]) ToggleActive(ctx context.Context, id int64) (any, error) {
	return e.res.ToggleActive(ctx, id)
}

func (e erased[T, I]) Archive(ctx context.Context, id int64) error {
	return e.res.Archive(ctx, id)
}

func (e erased[T, I]) Restore(ctx context.Context, id int64) error {
	return e.res.Restore(ctx, id)
}

func decodeInput[I validatable](payload json.RawMessage) (I, error) {
	var input I
	if err := json.Unmarshal(payload, &input); err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}
	if violations := input.Validate(); !violations.Empty() {
		return input, violations.Err()
	}
	return input, nil
}
