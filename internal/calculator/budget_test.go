package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roomledger/internal/models"
)

func TestBudgetStatus(t *testing.T) {
	tests := []struct {
		total string
		spent string
		pct   string
		tier  Tier
	}{
		{"10000", "0", "0", TierDoingGreat},
		{"10000", "4999", "49.99", TierDoingGreat},
		{"10000", "5000", "50", TierWatchSpending},
		{"10000", "8000", "80", TierAlmostAtLimit},
		{"10000", "9999", "99.99", TierAlmostAtLimit},
		{"10000", "10000", "100", TierOverBudget},
		{"10000", "12500", "125", TierOverBudget},
		{"0", "100", "0", TierDoingGreat},
	}

	for _, tt := range tests {
		t.Run(tt.total+"/"+tt.spent, func(t *testing.T) {
			got := BudgetStatus(dec(tt.total), dec(tt.spent))
			if !got.Percentage.Equal(dec(tt.pct)) {
				t.Errorf("Percentage = %s, want %s", got.Percentage, tt.pct)
			}
			if got.Tier != tt.tier {
				t.Errorf("Tier = %s, want %s", got.Tier, tt.tier)
			}
		})
	}
}

func TestBuildDashboard(t *testing.T) {
	t.Run("fresh ledger", func(t *testing.T) {
		d, err := BuildDashboard(models.DefaultSnapshot())
		if err != nil {
			t.Fatalf("BuildDashboard failed: %v", err)
		}
		if !d.Spent.IsZero() || !d.Remaining.Equal(models.DefaultBudgetTotal) {
			t.Errorf("spent=%s remaining=%s", d.Spent, d.Remaining)
		}
		if d.Status.Tier != TierDoingGreat || !d.Status.Percentage.IsZero() {
			t.Errorf("status = %+v, want doing great at 0%%", d.Status)
		}
		if len(d.Categories) != 0 || d.ExpenseCount != 0 {
			t.Errorf("expected empty dashboard, got %+v", d)
		}
	})

	t.Run("spent is recomputed from expenses", func(t *testing.T) {
		s := newSnapshot(personal("laptop", "6000", models.CategoryOther, me))
		s.Budget.Spent = decimal.Zero // stale stored value
		d, err := BuildDashboard(s)
		if err != nil {
			t.Fatalf("BuildDashboard failed: %v", err)
		}
		if !d.Spent.Equal(dec("6000")) || !d.Remaining.Equal(dec("4000")) {
			t.Errorf("spent=%s remaining=%s, want 6000/4000", d.Spent, d.Remaining)
		}
		if d.Status.Tier != TierWatchSpending {
			t.Errorf("tier = %s, want %s", d.Status.Tier, TierWatchSpending)
		}
	})
}
