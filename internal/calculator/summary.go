package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/roomledger/internal/models"
)

// Summary is the settlements view of the current user.
type Summary struct {
	Settlements    []Settlement
	NetBalance     decimal.Decimal
	TotalOwedToYou decimal.Decimal
	TotalYouOwe    decimal.Decimal
	OwedToYouCount int
	YouOweCount    int
}

// Summarize computes the settlements and their totals in one pass over the snapshot.
func Summarize(snapshot *models.Snapshot) (Summary, error) {
	settlements, err := PairwiseBalances(snapshot)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Settlements:    settlements,
		NetBalance:     NetBalance(settlements),
		TotalOwedToYou: TotalOwedToYou(settlements),
		TotalYouOwe:    TotalYouOwe(settlements),
	}
	for _, s := range settlements {
		if s.Direction == DirectionTheyOweYou {
			summary.OwedToYouCount++
		} else {
			summary.YouOweCount++
		}
	}
	return summary, nil
}
