package usecase

import (
	"strings"

	"github.com/docgrid/docgrid/internal/core/domain"
)

// DemoDataGuard decides whether a stored value may be trusted or must be
// re-extracted. The placeholder set is injected at construction; there is no
// package-level registry on purpose.
type DemoDataGuard struct {
	placeholders map[string]struct{}
}

// DefaultPlaceholders are the seeded demo literals that ship with new
// projects and must never survive a real extraction pass.
func DefaultPlaceholders() []string {
	return []string{
		"sample value",
		"demo data",
		"placeholder",
		"lorem ipsum",
		"n/a",
		"example.pdf",
	}
}

func NewDemoDataGuard(placeholders []string) *DemoDataGuard {
	set := make(map[string]struct{}, len(placeholders))
	for _, p := range placeholders {
		set[normalizePlaceholder(p)] = struct{}{}
	}
	return &DemoDataGuard{placeholders: set}
}

// ShouldExtract is a one-way ratchet: it can force extraction for missing,
// empty, or placeholder values, but never suppresses an explicit force.
func (g *DemoDataGuard) ShouldExtract(existing *domain.ExtractedValue, force bool) bool {
	if force {
		return true
	}
	if existing == nil {
		return true
	}
	trimmed := strings.TrimSpace(existing.Value)
	if trimmed == "" {
		return true
	}
	_, isPlaceholder := g.placeholders[normalizePlaceholder(trimmed)]
	return isPlaceholder
}

func normalizePlaceholder(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
