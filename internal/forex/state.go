package forex

import (
	"github.com/agents-play/server/internal/agent/model"
)

// Result is the terminal outcome of the currency graph. Either Rates for the
// identified base currency, or a user-facing FailureMessage. Built once per
// invocation and never mutated.
type Result struct {
	Currency       Currency
	Rates          map[Currency]float64
	FailureMessage string
}

// IsOK reports whether the graph reached the end state with rates.
func (r *Result) IsOK() bool {
	return r.FailureMessage == ""
}

func success(currency Currency, rates map[Currency]float64) *Result {
	return &Result{Currency: currency, Rates: rates}
}

func failure(message string) *Result {
	return &Result{FailureMessage: message}
}

// graphState is the per-invocation local state. The result slot follows
// write-once discipline: resolving it twice panics.
type graphState struct {
	rawInput string
	result   model.ResultSlot[*Result]
}
