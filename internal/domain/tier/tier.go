// Package tier holds the pure plan-classification and transition-decision
// logic. It has no dependencies on storage or transport; everything here is
// total and never returns an error.
package tier

import "strings"

// Tier is the relative rank of a plan, used to decide upgrade/downgrade
// legality. Higher is more valuable.
type Tier int

const (
	TierWalkIn       Tier = 1
	TierMonthly      Tier = 2
	TierCoachingGrp  Tier = 3
	TierCoachingSolo Tier = 4
)

// Family identifies which product line a plan belongs to. Two plans of the
// same tier can still belong to different families (and vice versa), so the
// resolver keys its rules on families first and falls back to tiers.
type Family string

const (
	FamilyUnknown      Family = ""
	FamilyWalkIn       Family = "walkin"
	FamilyMonthly      Family = "monthly"
	FamilyCoachingGrp  Family = "coaching_group"
	FamilyCoachingSolo Family = "coaching_solo"
)

// TierOf classifies any plan name or id into a tier. It is total: unknown or
// empty input classifies as the lowest tier rather than failing, so a
// malformed catalog entry can never break submission.
func TierOf(planNameOrID string) Tier {
	switch classify(planNameOrID) {
	case FamilyMonthly:
		return TierMonthly
	case FamilyCoachingGrp:
		return TierCoachingGrp
	case FamilyCoachingSolo:
		return TierCoachingSolo
	default:
		return TierWalkIn
	}
}

// FamilyOf resolves the family of a plan, preferring the plan id over the
// display name. Group and solo coaching plans may carry identical display
// copy ("Coaching Program"), so only the id can tell them apart.
func FamilyOf(name, id string) Family {
	if f := classify(id); f != FamilyUnknown {
		return f
	}
	return classify(name)
}

// classify is the priority-ordered keyword match shared by TierOf and
// FamilyOf. First match wins.
func classify(s string) Family {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "walk-in"), strings.Contains(s, "walkin"):
		return FamilyWalkIn
	case strings.Contains(s, "monthly"):
		return FamilyMonthly
	case strings.Contains(s, "coaching") && strings.Contains(s, "group"):
		return FamilyCoachingGrp
	case strings.Contains(s, "coaching") && strings.Contains(s, "solo"):
		return FamilyCoachingSolo
	case strings.Contains(s, "coaching"):
		// bare "coaching" with neither qualifier defaults to the group program
		return FamilyCoachingGrp
	default:
		return FamilyUnknown
	}
}

func (f Family) Tier() Tier {
	switch f {
	case FamilyMonthly:
		return TierMonthly
	case FamilyCoachingGrp:
		return TierCoachingGrp
	case FamilyCoachingSolo:
		return TierCoachingSolo
	default:
		return TierWalkIn
	}
}

// Label is the human form used in resolver copy.
func (f Family) Label() string {
	switch f {
	case FamilyWalkIn:
		return "Walk-in"
	case FamilyMonthly:
		return "Monthly"
	case FamilyCoachingGrp:
		return "Group Coaching"
	case FamilyCoachingSolo:
		return "Solo Coaching"
	default:
		return "Membership"
	}
}
