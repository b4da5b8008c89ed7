package absence

import "testing"

func TestInfoForType(t *testing.T) {
	if got := InfoForType(TypeVacation); got.Label != "Vacaciones" || got.Color != "#10b981" {
		t.Fatalf("vacation info: %+v", got)
	}
	if got := InfoForType(TypeMedicalLeave); got.Label != "Baja médica" {
		t.Fatalf("medical leave info: %+v", got)
	}
}

func TestInfoForTypeFallback(t *testing.T) {
	got := InfoForType("sabbatical")
	if got.Label != "Ausencia" || got.Emoji != "📋" {
		t.Fatalf("unknown type should fall back, got %+v", got)
	}
	if InfoForType("") != fallbackInfo {
		t.Fatal("empty type should fall back")
	}
}

func TestKnownTypes(t *testing.T) {
	known := KnownTypes()
	if len(known) != 4 {
		t.Fatalf("expected 4 known types, got %d", len(known))
	}
	for _, code := range known {
		if InfoForType(code) == fallbackInfo {
			t.Fatalf("known type %s missing display info", code)
		}
	}
}
