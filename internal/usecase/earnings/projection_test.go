package earnings

import (
	"testing"
	"time"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProject(t *testing.T) {
	period := 24 * time.Hour
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	machineType := &domain.MachineType{ID: "miner", Name: "Miner", Price: 50000, DailyEarnings: decimal.NewFromInt(60)}

	tests := []struct {
		name          string
		machine       domain.UserMachine
		now           time.Time
		wantState     domain.MachineState
		wantElapsed   int64
		wantRemaining int64
		wantProgress  float64
	}{
		{
			name:          "Never_Activated",
			machine:       domain.UserMachine{ID: "m1", MachineTypeID: "miner"},
			now:           start,
			wantState:     domain.MachineStateIdle,
			wantRemaining: 86400,
		},
		{
			name:          "One_Hour_In",
			machine:       domain.UserMachine{ID: "m1", MachineTypeID: "miner", IsActive: true, ActivatedAt: &start},
			now:           start.Add(time.Hour),
			wantState:     domain.MachineStateActive,
			wantElapsed:   3600,
			wantRemaining: 82800,
			wantProgress:  1.0 / 24,
		},
		{
			name:          "Partial_Second_Rounds_Remaining_Up",
			machine:       domain.UserMachine{ID: "m1", MachineTypeID: "miner", IsActive: true, ActivatedAt: &start},
			now:           start.Add(period - 500*time.Millisecond),
			wantState:     domain.MachineStateActive,
			wantElapsed:   86399,
			wantRemaining: 1,
			wantProgress:  float64(period-500*time.Millisecond) / float64(period),
		},
		{
			name:         "Period_Boundary",
			machine:      domain.UserMachine{ID: "m1", MachineTypeID: "miner", IsActive: true, ActivatedAt: &start},
			now:          start.Add(period),
			wantState:    domain.MachineStateClaimable,
			wantElapsed:  86400,
			wantProgress: 1,
		},
		{
			name:         "Stops_At_Period_End",
			machine:      domain.UserMachine{ID: "m1", MachineTypeID: "miner", IsActive: true, ActivatedAt: &start},
			now:          start.Add(3 * period),
			wantState:    domain.MachineStateClaimable,
			wantElapsed:  86400,
			wantProgress: 1,
		},
		{
			name:          "Clock_Behind_Activation",
			machine:       domain.UserMachine{ID: "m1", MachineTypeID: "miner", IsActive: true, ActivatedAt: &start},
			now:           start.Add(-time.Minute),
			wantState:     domain.MachineStateActive,
			wantRemaining: 86400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.machine
			m.MachineType = machineType
			m.TotalEarned = decimal.Zero

			p := Project(&m, period, tt.now)

			assert.Equal(t, tt.wantState, p.State)
			assert.Equal(t, tt.wantElapsed, p.ElapsedSeconds)
			assert.Equal(t, tt.wantRemaining, p.RemainingSeconds)
			assert.InDelta(t, tt.wantProgress, p.Progress, 1e-9)
			assert.Equal(t, int64(86400), p.PeriodSeconds)
			assert.Equal(t, "Miner", p.Name)
			assert.True(t, decimal.NewFromInt(60).Equal(p.DailyEarnings))
			assert.Equal(t, tt.now, p.ServerTime)
		})
	}
}

func TestClampPolicy(t *testing.T) {
	policy := ClampPolicy(decimal.NewFromInt(2))

	assert.True(t, decimal.RequireFromString("1.5").Equal(policy(decimal.RequireFromString("1.5"), nil)))
	assert.True(t, decimal.NewFromInt(2).Equal(policy(decimal.NewFromInt(50), nil)))
	assert.True(t, decimal.Zero.Equal(policy(decimal.NewFromInt(-3), nil)))
}
