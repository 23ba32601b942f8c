package earnings

import (
	"time"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/shopspring/decimal"
)

// Project derives the state of a machine at now. Earnings stop accruing at the end of
// the period until the machine is claimed and reactivated.
func Project(m *domain.UserMachine, period time.Duration, now time.Time) domain.MachineProjection {
	p := domain.MachineProjection{
		UserMachineID: m.ID,
		MachineTypeID: m.MachineTypeID,
		State:         domain.MachineStateIdle,
		PeriodSeconds: int64(period / time.Second),
		DailyEarnings: decimal.Zero,
		TotalEarned:   m.TotalEarned,
		ServerTime:    now,
	}
	if m.MachineType != nil {
		p.Name = m.MachineType.Name
		p.DailyEarnings = m.MachineType.DailyEarnings
	}

	if !m.IsActive || m.ActivatedAt == nil {
		p.RemainingSeconds = p.PeriodSeconds
		return p
	}

	start := *m.ActivatedAt
	p.StartTime = &start

	elapsed := now.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= period {
		p.State = domain.MachineStateClaimable
		p.ElapsedSeconds = p.PeriodSeconds
		p.Progress = 1
		return p
	}

	p.State = domain.MachineStateActive
	p.ElapsedSeconds = int64(elapsed / time.Second)
	p.RemainingSeconds = int64((period - elapsed + time.Second - 1) / time.Second)
	if period > 0 {
		p.Progress = float64(elapsed) / float64(period)
	}
	return p
}

// claimedCurrentPeriod reports whether the period started at activated_at was already claimed
func claimedCurrentPeriod(m *domain.UserMachine) bool {
	return !m.IsActive && m.ActivatedAt != nil && m.LastClaimTime != nil && !m.LastClaimTime.Before(*m.ActivatedAt)
}
