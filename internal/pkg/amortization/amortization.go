// Package amortization computes fixed-payment (PRICE) loan installments and
// month-by-month amortization schedules. All amounts are currency values
// rounded to 2 decimal places before being carried forward, so rounding error
// never compounds beyond cent-level drift over a schedule.
package amortization

import (
	"math"

	"github.com/shopspring/decimal"
)

// Entry is one month of an amortization schedule.
type Entry struct {
	Month         int     `json:"month"`
	Payment       float64 `json:"payment"`
	PrincipalPaid float64 `json:"principalPaid"`
	Interest      float64 `json:"interest"`
	Balance       float64 `json:"balance"`
}

// Result is a full schedule plus its totals.
type Result struct {
	Schedule      []Entry `json:"schedule"`
	TotalInterest float64 `json:"totalInterest"`
	Payment       float64 `json:"payment"`
}

// Installment returns the fixed monthly payment for a loan of principal at
// annualRate (decimal fraction per year, e.g. 0.08) over months periods.
// months <= 0 yields 0. A zero rate degenerates to a straight-line split.
func Installment(principal, annualRate float64, months int) float64 {
	if months <= 0 {
		return 0
	}
	monthlyRate := annualRate / 12
	if monthlyRate == 0 {
		return round2(principal / float64(months))
	}
	payment := principal * monthlyRate / (1 - math.Pow(1+monthlyRate, float64(-months)))
	return round2(payment)
}

// Schedule builds the amortization table for a loan. When payment is <= 0 the
// installment is derived via Installment. The principal portion of a period is
// capped at the remaining balance so the final installment never overpays.
func Schedule(principal, annualRate float64, months int, payment float64) Result {
	monthlyRate := annualRate / 12
	if payment <= 0 {
		payment = Installment(principal, annualRate, months)
	}
	if months <= 0 {
		return Result{Schedule: []Entry{}, Payment: payment}
	}

	balance := principal
	entries := make([]Entry, 0, months)
	totalInterest := 0.0

	for m := 1; m <= months; m++ {
		interest := round2(balance * monthlyRate)
		principalPaid := round2(math.Min(payment-interest, balance))
		balance = round2(balance - principalPaid)
		totalInterest += interest

		entries = append(entries, Entry{
			Month:         m,
			Payment:       payment,
			PrincipalPaid: principalPaid,
			Interest:      interest,
			Balance:       balance,
		})
	}

	return Result{
		Schedule:      entries,
		TotalInterest: round2(totalInterest),
		Payment:       payment,
	}
}

// round2 rounds half away from zero to 2 decimal places through decimal
// arithmetic to avoid binary-float rounding surprises on .5 boundaries.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
