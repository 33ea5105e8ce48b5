package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsOverdueAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	t.Run("Pending past due is overdue", func(t *testing.T) {
		assert.True(t, IsOverdueAt(past, BillStatusPending, now))
	})

	t.Run("Pending before due is not overdue", func(t *testing.T) {
		assert.False(t, IsOverdueAt(future, BillStatusPending, now))
	})

	t.Run("Due exactly now is not overdue", func(t *testing.T) {
		assert.False(t, IsOverdueAt(now, BillStatusPending, now))
	})

	t.Run("Paid bill is never overdue", func(t *testing.T) {
		assert.False(t, IsOverdueAt(past, BillStatusPaid, now))
	})

	t.Run("Already classified OVERDUE is not re-reported", func(t *testing.T) {
		assert.False(t, IsOverdueAt(past, BillStatusOverdue, now))
	})

	t.Run("Advances with the clock", func(t *testing.T) {
		due := now.Add(time.Hour)
		assert.False(t, IsOverdueAt(due, BillStatusPending, now))
		assert.True(t, IsOverdueAt(due, BillStatusPending, now.Add(2*time.Hour)))
	})
}

func TestBillStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    BillStatus
		to      BillStatus
		allowed bool
	}{
		{BillStatusPending, BillStatusPaid, true},
		{BillStatusPending, BillStatusOverdue, true},
		{BillStatusOverdue, BillStatusPaid, true},
		{BillStatusPaid, BillStatusPending, false},
		{BillStatusPaid, BillStatusOverdue, false},
		{BillStatusPaid, BillStatusPaid, false},
		{BillStatusOverdue, BillStatusPending, false},
		{BillStatusPending, BillStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestReadingConsumption(t *testing.T) {
	t.Run("With previous reading", func(t *testing.T) {
		prev := 800.0
		r := MeterReading{Reading: 1000, PreviousReading: &prev}
		assert.Equal(t, 200.0, r.Consumption())
	})

	t.Run("First reading for a meter", func(t *testing.T) {
		r := MeterReading{Reading: 1000}
		assert.Equal(t, 0.0, r.Consumption())
	})
}

func TestReadingRecordedOn(t *testing.T) {
	day := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

	t.Run("Same calendar day", func(t *testing.T) {
		r := MeterReading{ReadingDate: time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)}
		assert.True(t, r.RecordedOn(day))
	})

	t.Run("Previous day", func(t *testing.T) {
		r := MeterReading{ReadingDate: time.Date(2025, 6, 14, 23, 59, 0, 0, time.UTC)}
		assert.False(t, r.RecordedOn(day))
	})

	t.Run("Compared in the local zone of the day", func(t *testing.T) {
		nairobi := time.FixedZone("EAT", 3*60*60)
		// 22:00 UTC on the 14th is 01:00 on the 15th in EAT.
		r := MeterReading{ReadingDate: time.Date(2025, 6, 14, 22, 0, 0, 0, time.UTC)}
		assert.True(t, r.RecordedOn(time.Date(2025, 6, 15, 9, 0, 0, 0, nairobi)))
	})
}
