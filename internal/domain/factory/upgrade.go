package factory

import "time"

// UpgradeTimer tracks a paid level upgrade that completes after a delay
type UpgradeTimer struct {
	startedAt       int64 // unix seconds
	durationSeconds int
	targetLevel     int
}

// ReconstructUpgradeTimer rebuilds a timer from persistence
func ReconstructUpgradeTimer(startedAt int64, durationSeconds, targetLevel int) *UpgradeTimer {
	return &UpgradeTimer{startedAt: startedAt, durationSeconds: durationSeconds, targetLevel: targetLevel}
}

func (u *UpgradeTimer) StartedAt() int64     { return u.startedAt }
func (u *UpgradeTimer) DurationSeconds() int { return u.durationSeconds }
func (u *UpgradeTimer) TargetLevel() int     { return u.targetLevel }

// Remaining returns whole seconds until the upgrade lands
func (u *UpgradeTimer) Remaining(now time.Time) int64 {
	remaining := u.startedAt + int64(u.durationSeconds) - now.Unix()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsDue reports whether the upgrade delay has elapsed
func (u *UpgradeTimer) IsDue(now time.Time) bool {
	return now.Unix()-u.startedAt >= int64(u.durationSeconds)
}
