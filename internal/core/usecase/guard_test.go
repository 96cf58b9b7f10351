package usecase

import (
	"testing"
	"time"

	"github.com/docgrid/docgrid/internal/core/domain"
)

func storedValue(s string) *domain.ExtractedValue {
	return &domain.ExtractedValue{Value: s, Confidence: 0.8, ExtractedAt: time.Now()}
}

func TestGuardPlaceholderAlwaysReextracted(t *testing.T) {
	g := NewDemoDataGuard([]string{"Demo Data", "sample value"})

	if !g.ShouldExtract(storedValue("demo data"), false) {
		t.Fatal("placeholder value must be re-extracted without force")
	}
	if !g.ShouldExtract(storedValue("  Sample Value  "), false) {
		t.Fatal("placeholder match should ignore case and surrounding space")
	}
}

func TestGuardMissingOrEmptyTriggers(t *testing.T) {
	g := NewDemoDataGuard(DefaultPlaceholders())
	if !g.ShouldExtract(nil, false) {
		t.Fatal("missing value must trigger extraction")
	}
	if !g.ShouldExtract(storedValue("   "), false) {
		t.Fatal("blank value must trigger extraction")
	}
}

func TestGuardKeepsRealValues(t *testing.T) {
	g := NewDemoDataGuard(DefaultPlaceholders())
	if g.ShouldExtract(storedValue("ACME Corp"), false) {
		t.Fatal("real value should be kept without force")
	}
}

func TestGuardNeverSuppressesForce(t *testing.T) {
	g := NewDemoDataGuard(DefaultPlaceholders())
	if !g.ShouldExtract(storedValue("ACME Corp"), true) {
		t.Fatal("force must win over a fresh value")
	}
}
