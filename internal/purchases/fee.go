package purchases

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fee is the settlement fee owed by the seller after confirmation.
type Fee struct {
	Amount int64
	DueAt  time.Time
}

// ComputeFee calculates the seller settlement fee: percent of the total,
// rounded down to a whole currency unit, due after the configured window.
func ComputeFee(totalPrice int64, percent int, dueAfter time.Duration, now time.Time) Fee {
	amount := decimal.NewFromInt(totalPrice).
		Mul(decimal.NewFromInt(int64(percent))).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()
	return Fee{
		Amount: amount,
		DueAt:  now.Add(dueAfter),
	}
}
