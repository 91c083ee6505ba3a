package access

import (
	"time"

	"socialhub-app/internal/domain/billing"
	"socialhub-app/internal/domain/plans"
)

type Policy struct {
	State        AccessState    `json:"state"`
	Plan         plans.PlanType `json:"plan"`
	Capabilities []Capability   `json:"capabilities"`
	MaxPlatforms int            `json:"maxPlatforms"`
}

func ComputePolicy(now time.Time, sub *billing.Subscription) Policy {
	state := ComputeEffectiveAccessState(now, sub)
	plan := EffectivePlan(now, sub)

	return Policy{
		State:        state,
		Plan:         plan,
		Capabilities: CapabilitiesFor(state, plan),
		MaxPlatforms: MaxPlatformsFor(plan),
	}
}

func (p Policy) Allows(c Capability) bool {
	for _, have := range p.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}
