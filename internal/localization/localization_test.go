package localization

import (
	"testing"
)

var testVaultYaml = []byte(`
strings:
  - key: reports.linkedToSupervisor
    translations:
      en: "linked to supervisor {0}"
      fr: "lié au superviseur {0}"
  - key: dashboard.rest
    translations:
      en: "(rest)"
healthRisks:
  - id: 3
    names:
      en: "Fever and rash"
      fr: "Fièvre et éruption cutanée"
  - id: 5
    names:
      en: "Acute watery diarrhea"
`)

func TestGetSubstitutesArgs(t *testing.T) {
	v, err := Parse(testVaultYaml)
	if err != nil {
		t.Fatalf("expected no parse error, got %s", err.Error())
	}

	got := v.Get("en", KeyLinkedToSupervisor, "Anna")
	if got != "linked to supervisor Anna" {
		t.Errorf("expected substituted label, got %q", got)
	}
	got = v.Get("fr", KeyLinkedToSupervisor, "Anna")
	if got != "lié au superviseur Anna" {
		t.Errorf("expected french label, got %q", got)
	}
}

func TestGetMissingKeyIsEmpty(t *testing.T) {
	v, err := Parse(testVaultYaml)
	if err != nil {
		t.Fatalf("expected no parse error, got %s", err.Error())
	}
	if got := v.Get("sw", KeyLinkedToSupervisor, "Anna"); got != "" {
		t.Errorf("expected empty string for unloaded language, got %q", got)
	}
}

func TestHealthRiskNameNoFallback(t *testing.T) {
	v, err := Parse(testVaultYaml)
	if err != nil {
		t.Fatalf("expected no parse error, got %s", err.Error())
	}

	name, ok := v.HealthRiskName("en", 3)
	if !ok || name != "Fever and rash" {
		t.Errorf("expected english name, got %q ok=%v", name, ok)
	}

	// id 5 has no french name and must not fall back to english
	if _, ok := v.HealthRiskName("fr", 5); ok {
		t.Error("expected no french name for health risk 5")
	}
}

func TestMatchLanguage(t *testing.T) {
	v, err := Parse(testVaultYaml)
	if err != nil {
		t.Fatalf("expected no parse error, got %s", err.Error())
	}

	if got := v.MatchLanguage("fr-CA"); got != "fr" {
		t.Errorf("expected fr for fr-CA, got %q", got)
	}
	if got := v.MatchLanguage("en-GB"); got != "en" {
		t.Errorf("expected en for en-GB, got %q", got)
	}
}

func TestParseMalformedYaml(t *testing.T) {
	if _, err := Parse([]byte("strings: {not a list")); err == nil {
		t.Error("expected parse error for malformed yaml")
	}
}
