package plans

import "strings"

type PlanType string

// Plan tiers (single source of truth)
const (
	PlanFree       PlanType = "free"
	PlanBasic      PlanType = "basic"
	PlanPro        PlanType = "pro"
	PlanEnterprise PlanType = "enterprise"
)

// Normalize maps a stored or user supplied value onto a known tier.
// Unknown values resolve to free.
func Normalize(s string) PlanType {
	switch p := PlanType(strings.ToLower(strings.TrimSpace(s))); p {
	case PlanBasic, PlanPro, PlanEnterprise:
		return p
	default:
		return PlanFree
	}
}

// Rank orders tiers from free (0) to enterprise (3).
func Rank(p PlanType) int {
	switch Normalize(string(p)) {
	case PlanEnterprise:
		return 3
	case PlanPro:
		return 2
	case PlanBasic:
		return 1
	default:
		return 0
	}
}
