package access

import "socialhub-app/internal/domain/plans"

func CapabilitiesFor(state AccessState, plan plans.PlanType) []Capability {
	if state == AccessLocked {
		return []Capability{}
	}

	// past_due keeps publishing but loses paid extras
	if state == AccessLimited {
		return []Capability{CapabilityPublish}
	}

	switch plan {
	case plans.PlanBasic:
		return []Capability{CapabilityPublish, CapabilitySchedule}
	case plans.PlanPro, plans.PlanEnterprise:
		return []Capability{CapabilityPublish, CapabilitySchedule, CapabilityAnalytics}
	default:
		return []Capability{CapabilityPublish}
	}
}

func MaxPlatformsFor(plan plans.PlanType) int {
	switch plan {
	case plans.PlanBasic:
		return 5
	case plans.PlanPro:
		return 10
	case plans.PlanEnterprise:
		return Unlimited
	default:
		return 2
	}
}
