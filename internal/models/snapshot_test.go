package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestExpenseJSONAmounts(t *testing.T) {
	e := Expense{
		ID: "exp-1", Title: "Rent", Amount: decimal.NewFromInt(300),
		Category: CategoryUtilities, Type: ExpenseTypeShared,
		Payer: "user-1", Participants: []string{"user-1", "p-2"},
	}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"amount":300`) {
		t.Errorf("expected a numeric amount, got %s", data)
	}

	tests := []struct {
		name  string
		input string
	}{
		{"number", `{"amount":12.5}`},
		{"quoted", `{"amount":"12.5"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Expense
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !got.Amount.Equal(decimal.RequireFromString("12.5")) {
				t.Errorf("amount = %s, want 12.5", got.Amount)
			}
		})
	}
}
