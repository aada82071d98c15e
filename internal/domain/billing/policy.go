package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// TaxPolicy prices the periodic tax on an owned factory
type TaxPolicy struct {
	Rate            float64 // fraction of the purchase price per cycle
	LevelMultiplier float64 // extra fraction of the base amount per level above 1
}

// Amount returns price * rate * (1 + (level-1) * levelMultiplier), rounded to cents
func (p TaxPolicy) Amount(price float64, level int) float64 {
	if level < 1 {
		level = 1
	}
	return shared.RoundCredits(price * p.Rate * (1 + float64(level-1)*p.LevelMultiplier))
}

// OverduePolicy selects the consequence applied to overdue invoices
type OverduePolicy string

const (
	// OverduePolicyLog only reports overdue invoices
	OverduePolicyLog OverduePolicy = "log"
	// OverduePolicySuspend blocks production on the factory until its overdue invoices are paid
	OverduePolicySuspend OverduePolicy = "suspend"
)

// ParseOverduePolicy parses a policy name
func ParseOverduePolicy(s string) (OverduePolicy, error) {
	switch p := OverduePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case OverduePolicyLog, OverduePolicySuspend:
		return p, nil
	default:
		return "", fmt.Errorf("unknown overdue policy %q (want log or suspend)", s)
	}
}

// RunDue reports whether a billing job of the given interval may run at now.
// A zero lastRun means the job never ran.
func RunDue(lastRun time.Time, now time.Time, interval time.Duration) bool {
	if lastRun.IsZero() {
		return true
	}
	return !now.Before(lastRun.Add(interval))
}
