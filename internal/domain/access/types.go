package access

type AccessState string

const (
	AccessFull    AccessState = "full"
	AccessLimited AccessState = "limited"
	AccessLocked  AccessState = "locked"
)

type Capability string

const (
	CapabilityPublish   Capability = "publish"
	CapabilitySchedule  Capability = "schedule"
	CapabilityAnalytics Capability = "analytics"
)

// Unlimited marks a limit without an upper bound.
const Unlimited = -1
