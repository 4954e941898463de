package tours

import (
	"context"
	"fmt"

	"github.com/angelmondragon/pressing-admin/internal/validation"
	"github.com/angelmondragon/pressing-admin/internal/wizard"
	"github.com/angelmondragon/pressing-admin/pkg/models"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

// DraftKind names tour wizard drafts in the draft store.
const DraftKind = "tours"

const (
	StepPlanning      = "planning"
	StepLivreur       = "livreur"
	StepOperations    = "operations"
	StepRecapitulatif = "recapitulatif"
)

var Steps = []string{StepPlanning, StepLivreur, StepOperations, StepRecapitulatif}

// Form is the state edited by the tour wizard.
type Form struct {
	DateTournee types.Date          `json:"dateTournee"`
	HeureDebut  *types.Clock        `json:"heureDebut,omitempty"`
	HeureFin    *types.Clock        `json:"heureFin,omitempty"`
	LivreurID   int64               `json:"livreurId"`
	Livreur     *models.Utilisateur `json:"livreur,omitempty"`
	Operations  []OperationInput    `json:"operations"`
	Notes       string              `json:"notes,omitempty"`
}

func NewForm() *Form {
	return &Form{}
}

// Assign implements wizard.Form.
func (f *Form) Assign(field string, value any) error {
	switch field {
	case "dateTournee":
		return wizard.Assign(&f.DateTournee, value)
	case "heureDebut":
		return wizard.Assign(&f.HeureDebut, value)
	case "heureFin":
		return wizard.Assign(&f.HeureFin, value)
	case "livreurId":
		return wizard.Assign(&f.LivreurID, value)
	case "livreur":
		var courier models.Utilisateur
		if err := wizard.Assign(&courier, value); err != nil {
			return err
		}
		f.Livreur = &courier
		f.LivreurID = courier.ID
		return nil
	case "operations":
		return wizard.Assign(&f.Operations, value)
	case "notes":
		return wizard.Assign(&f.Notes, value)
	}
	return fmt.Errorf("unknown tour field %q", field)
}

type operationsStep struct {
	Operations []OperationInput `json:"operations" validate:"min=1,dive"`
}

// ValidateStep implements wizard.Form.
func (f *Form) ValidateStep(step string) validation.Violations {
	v := validation.Violations{}
	switch step {
	case StepPlanning:
		if f.DateTournee.IsZero() {
			v.Add("dateTournee", "Ce champ est requis")
		}
		if f.HeureDebut == nil {
			v.Add("heureDebut", "Ce champ est requis")
		}
		if f.HeureFin == nil {
			v.Add("heureFin", "Ce champ est requis")
		}
		if f.HeureDebut != nil && f.HeureFin != nil && !f.HeureDebut.Before(*f.HeureFin) {
			v.Add("heureFin", "L'heure de fin doit être postérieure à l'heure de début")
		}
	case StepLivreur:
		if f.LivreurID <= 0 {
			v.Add("livreurId", "Sélectionnez un livreur")
		}
	case StepOperations:
		v.Merge(validation.Struct(operationsStep{Operations: f.Operations}))
		v.Merge(duplicateOperations(f.Operations))
	}
	return v
}

// Input converts the form into the tour payload. Operations without a planned date take the
// tour date and their position as order.
func (f *Form) Input() Input {
	input := Input{
		DateTournee: f.DateTournee,
		LivreurID:   f.LivreurID,
		Notes:       f.Notes,
		Operations:  make([]OperationInput, 0, len(f.Operations)),
	}
	if f.HeureDebut != nil {
		input.HeureDebut = *f.HeureDebut
	}
	if f.HeureFin != nil {
		input.HeureFin = *f.HeureFin
	}
	for i, op := range f.Operations {
		if op.DatePrevue.IsZero() {
			op.DatePrevue = f.DateTournee
		}
		if op.Ordre == 0 {
			op.Ordre = i + 1
		}
		input.Operations = append(input.Operations, op)
	}
	return input
}

// Wizard is the four-step tour planning flow.
type Wizard struct {
	*wizard.Machine[*Form]
}

func NewWizard() *Wizard {
	return &Wizard{Machine: wizard.New(Steps, NewForm())}
}

// RestoreWizard rebuilds a wizard from a draft.
func RestoreWizard(state wizard.State[*Form]) *Wizard {
	if state.Form == nil {
		state.Form = NewForm()
	}
	return &Wizard{Machine: wizard.Restore(Steps, state)}
}

// Window renders the planned time window, empty until both ends are set.
func (w *Wizard) Window() string {
	form := w.Form()
	if form.HeureDebut == nil || form.HeureFin == nil {
		return ""
	}
	return types.WindowLabel(*form.HeureDebut, *form.HeureFin)
}

// Submit creates the tour from the final step.
func (w *Wizard) Submit(ctx context.Context, svc Service) (*models.Tournee, error) {
	var created *models.Tournee
	err := w.Machine.Submit(ctx, func(ctx context.Context, form *Form) error {
		tour, err := svc.Create(ctx, form.Input())
		if err != nil {
			return err
		}
		created = tour
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
