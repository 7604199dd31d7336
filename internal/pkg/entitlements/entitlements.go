package entitlements

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// PlanFor maps the stored tier flag to a plan.
func PlanFor(isPro bool) Plan {
	if isPro {
		return PlanPro
	}
	return PlanFree
}

// Limits holds the monthly generation ceilings per plan.
type Limits struct {
	Free int64
	Pro  int64
}

func NewLimits(free, pro int64) Limits {
	return Limits{Free: free, Pro: pro}
}

// LimitFor returns the monthly ceiling for the given tier flag.
func (l Limits) LimitFor(isPro bool) int64 {
	if isPro {
		return l.Pro
	}
	return l.Free
}

// Remaining is the number of generations left, never negative. The count can
// exceed the limit after a downgrade or a near-boundary race.
func Remaining(count, limit int64) int64 {
	if count >= limit {
		return 0
	}
	return limit - count
}

// Exceeded reports whether another generation must be refused.
func Exceeded(count, limit int64) bool {
	return count >= limit
}
