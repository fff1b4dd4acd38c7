// Package plans holds the immutable subscription plan definitions.
// The table is a process-lifetime constant; plan gating itself is a
// simple attribute check done by callers.
package plans

// Plan is a closed enumeration of subscription tiers.
type Plan string

const (
	PlanStarter    Plan = "STARTER"
	PlanStandard   Plan = "STANDARD"
	PlanEnterprise Plan = "ENTERPRISE"
)

// Limits caps per-organization resources for a plan.
type Limits struct {
	MaxVehicles      int
	MaxProjects      int
	MaxUsers         int
	MonthlyPDFQuota  int
	FactoryReporting bool
}

var planTable = map[Plan]Limits{
	PlanStarter:    {MaxVehicles: 10, MaxProjects: 2, MaxUsers: 3, MonthlyPDFQuota: 20},
	PlanStandard:   {MaxVehicles: 50, MaxProjects: 10, MaxUsers: 15, MonthlyPDFQuota: 200, FactoryReporting: true},
	PlanEnterprise: {MaxVehicles: 500, MaxProjects: 100, MaxUsers: 100, MonthlyPDFQuota: 2000, FactoryReporting: true},
}

// LimitsFor returns the limits for a plan. Unknown plans fall back to
// the starter tier.
func LimitsFor(p Plan) Limits {
	if l, ok := planTable[p]; ok {
		return l
	}
	return planTable[PlanStarter]
}

// Valid reports whether the plan is part of the closed enumeration.
func (p Plan) Valid() bool {
	_, ok := planTable[p]
	return ok
}
