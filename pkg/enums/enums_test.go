package enums

import "testing"

func TestTourStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to TourStatus
		allowed  bool
	}{
		{TourStatusPlanifiee, TourStatusEnCours, true},
		{TourStatusPlanifiee, TourStatusAnnulee, true},
		{TourStatusEnCours, TourStatusTerminee, true},
		{TourStatusEnCours, TourStatusAnnulee, true},
		{TourStatusPlanifiee, TourStatusTerminee, false},
		{TourStatusTerminee, TourStatusAnnulee, false},
		{TourStatusAnnulee, TourStatusEnCours, false},
		{TourStatusEnCours, TourStatusPlanifiee, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Fatalf("%s -> %s: got %v want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
	if !TourStatusTerminee.IsTerminal() || TourStatusEnCours.IsTerminal() {
		t.Fatal("unexpected terminal classification")
	}
}

func TestEventForFrame(t *testing.T) {
	cases := map[string]NotificationEvent{
		"notification:nouvelle":        EventNotification,
		"notification":                 EventNotification,
		"notifications-bulk":           EventNotifications,
		"notification:connected":       EventUserChannel,
		"notification:admin-connected": EventAdminChannel,
		"pong":                         EventPong,
	}
	for frame, want := range cases {
		got, ok := EventForFrame(frame)
		if !ok || got != want {
			t.Fatalf("EventForFrame(%q) = %q,%v want %q", frame, got, ok, want)
		}
	}
	if _, ok := EventForFrame("typing"); ok {
		t.Fatal("unknown frame types must not resolve")
	}
}

func TestParseHelpers(t *testing.T) {
	if _, err := ParsePaymentStatus("valide"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParsePaymentStatus("paid"); err == nil {
		t.Fatal("expected error for unknown payment status")
	}
	if _, err := ParseReductionType("pourcentage"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !OperationStatusEffectuee.AcceptsProofs() || OperationStatusPlanifiee.AcceptsProofs() {
		t.Fatal("proofs only accepted once effectuee")
	}
	if OrderStatusLivree.IsOpen() || !OrderStatusEnAttente.IsOpen() {
		t.Fatal("unexpected open classification")
	}
}
