// ==============================================================================
// REPORT RENDERING - internal/report/report.go
// ==============================================================================
// Plain text and JSON rendering of settlement plans for the cashflow CLI.
// ==============================================================================
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"cashflow/pkg/domain"

	"github.com/shopspring/decimal"
)

const (
	boxWidth  = 74
	ruleWidth = 80

	TransfersTitle = "MINIMIZED CASH FLOW TRANSACTIONS"
	BalancesTitle  = "NET BALANCES"
)

// Header prints title centred in a bordered box.
func Header(w io.Writer, title string) {
	border := "+" + strings.Repeat("-", boxWidth-2) + "+"
	inner := boxWidth - 2
	left := (inner - len(title)) / 2
	if left < 0 {
		left = 0
	}
	right := inner - len(title) - left
	if right < 0 {
		right = 0
	}

	fmt.Fprintf(w, "\n%s\n|%s%s%s|\n%s\n\n",
		border, strings.Repeat(" ", left), title, strings.Repeat(" ", right), border)
}

// Section prints a ruled section title.
func Section(w io.Writer, title string) {
	rule := strings.Repeat("-", ruleWidth)
	fmt.Fprintf(w, "\n%s\n %s\n%s\n", rule, title, rule)
}

// TransferLine formats one transfer as a fixed-width table row.
func TransferLine(t domain.Transfer) string {
	return fmt.Sprintf("| %-20s pays Rs %8d to %-20s via %s", t.From, t.Amount, t.To, t.Channel)
}

// Transfers prints the minimised transfer list.
func Transfers(w io.Writer, transfers []domain.Transfer) {
	Header(w, TransfersTitle)

	if len(transfers) == 0 {
		fmt.Fprintln(w, "| No transfers required, every balance is already settled")
	}
	for _, t := range transfers {
		fmt.Fprintln(w, TransferLine(t))
	}
	fmt.Fprintln(w)
}

// Balances prints each party's net position.
func Balances(w io.Writer, balances []domain.Balance) {
	Header(w, BalancesTitle)

	fmt.Fprintf(w, "| %-20s %12s  %s\n", "Party", "Net (Rs)", "Position")
	fmt.Fprintf(w, "|%s\n", strings.Repeat("-", 50))
	for _, b := range balances {
		fmt.Fprintf(w, "| %-20s %12d  %s\n", b.Party, b.Amount, position(b.Amount))
	}
	fmt.Fprintln(w)
}

func position(amount int64) string {
	switch {
	case amount > 0:
		return "receives"
	case amount < 0:
		return "pays"
	default:
		return "settled"
	}
}

// Summary prints plan totals. Volume is accumulated as a decimal so a plan
// close to the int64 limit still renders.
func Summary(w io.Writer, plan *domain.Plan) {
	volume := decimal.Zero
	for _, t := range plan.Transfers {
		volume = volume.Add(decimal.NewFromInt(t.Amount))
	}

	intermediary := "none"
	if plan.Intermediary >= 0 && plan.Intermediary < len(plan.Parties) {
		intermediary = plan.Parties[plan.Intermediary].Name
	}

	Section(w, "SUMMARY")
	fmt.Fprintf(w, " Plan:              %s\n", plan.ID)
	fmt.Fprintf(w, " Parties:           %d\n", len(plan.Parties))
	fmt.Fprintf(w, " Transfers:         %d\n", len(plan.Transfers))
	fmt.Fprintf(w, " Volume:            Rs %s\n", volume.String())
	fmt.Fprintf(w, " Intermediary:      %s\n", intermediary)
	fmt.Fprintf(w, " Intermediary hops: %d\n", plan.IntermediaryHops)
}

// Plan renders a full plan as text.
func Plan(w io.Writer, plan *domain.Plan) {
	Transfers(w, plan.Transfers)
	Summary(w, plan)
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
