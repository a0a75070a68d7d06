package tier

import "fmt"

// PlanRef carries the two identifying fields the resolver needs. The id
// always wins over the display name when the two disagree.
type PlanRef struct {
	ID   string
	Name string
}

func (p PlanRef) family() Family { return FamilyOf(p.Name, p.ID) }

// Decision is the resolver's verdict on a requested plan change.
// Allowed=false is a hard block; RequiresConfirmation=true means the member
// must explicitly confirm the shown title/message before submission may
// proceed with bypass.
type Decision struct {
	Title                string
	Message              string
	Allowed              bool
	RequiresConfirmation bool
}

type ruleKind int

const (
	ruleExtend ruleKind = iota
	ruleUpgrade
	ruleForbidden
)

// transitionRules enumerates every pair of known families. Keeping the full
// matrix explicit (rather than deriving it from tiers) makes the asymmetric
// cases auditable: group→solo and solo→group are both forbidden even though
// their tiers differ.
var transitionRules = map[[2]Family]ruleKind{
	{FamilyWalkIn, FamilyWalkIn}:             ruleExtend,
	{FamilyMonthly, FamilyMonthly}:           ruleExtend,
	{FamilyCoachingGrp, FamilyCoachingGrp}:   ruleExtend,
	{FamilyCoachingSolo, FamilyCoachingSolo}: ruleExtend,

	{FamilyWalkIn, FamilyMonthly}:       ruleUpgrade,
	{FamilyWalkIn, FamilyCoachingGrp}:   ruleUpgrade,
	{FamilyWalkIn, FamilyCoachingSolo}:  ruleUpgrade,
	{FamilyMonthly, FamilyCoachingGrp}:  ruleUpgrade,
	{FamilyMonthly, FamilyCoachingSolo}: ruleUpgrade,

	{FamilyMonthly, FamilyWalkIn}:           ruleForbidden,
	{FamilyCoachingGrp, FamilyWalkIn}:       ruleForbidden,
	{FamilyCoachingSolo, FamilyWalkIn}:      ruleForbidden,
	{FamilyCoachingGrp, FamilyMonthly}:      ruleForbidden,
	{FamilyCoachingSolo, FamilyMonthly}:     ruleForbidden,
	{FamilyCoachingGrp, FamilyCoachingSolo}: ruleForbidden,
	{FamilyCoachingSolo, FamilyCoachingGrp}: ruleForbidden,
}

// Resolve decides whether the member may move from the current plan to the
// requested one while the current subscription is still running. It is pure
// and total; both plans may be arbitrary strings.
func Resolve(current, next PlanRef) Decision {
	curFam, nextFam := current.family(), next.family()

	if kind, ok := transitionRules[[2]Family{curFam, nextFam}]; ok {
		switch kind {
		case ruleExtend:
			return Decision{
				Title: fmt.Sprintf("Extend %s Subscription?", curFam.Label()),
				Message: fmt.Sprintf(
					"You already have an active %s subscription. The remaining period of your current subscription and the new period will be combined. Do you want to continue?",
					curFam.Label()),
				Allowed:              true,
				RequiresConfirmation: true,
			}
		case ruleUpgrade:
			return Decision{
				Title: fmt.Sprintf("Upgrade to %s Subscription!", nextFam.Label()),
				Message: fmt.Sprintf(
					"Your current %s subscription will be replaced immediately by the %s plan. Do you want to continue?",
					curFam.Label(), nextFam.Label()),
				Allowed:              true,
				RequiresConfirmation: true,
			}
		case ruleForbidden:
			return Decision{
				Title: fmt.Sprintf("Cannot Add %s to %s Subscription", nextFam.Label(), curFam.Label()),
				Message: fmt.Sprintf(
					"You already have an active %s subscription. Please wait until it ends before purchasing a %s plan.",
					curFam.Label(), nextFam.Label()),
				Allowed:              false,
				RequiresConfirmation: false,
			}
		}
	}

	// At least one side is outside the known catalog families; fall back to
	// tier comparison. Unknown plans rank as the lowest tier.
	if nextFam.Tier() > curFam.Tier() {
		return Decision{
			Title: "Upgrade Your Subscription?",
			Message: "You can start the new plan immediately, replacing your current subscription, " +
				"or let it start after the current one ends. Do you want to continue?",
			Allowed:              true,
			RequiresConfirmation: true,
		}
	}
	return Decision{
		Title: "Queue New Subscription?",
		Message: "Your new purchase will start automatically after your current subscription ends. " +
			"Do you want to continue?",
		Allowed:              true,
		RequiresConfirmation: true,
	}
}
