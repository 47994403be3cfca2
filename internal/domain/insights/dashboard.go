package insights

import (
	"time"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
)

// Dashboard is everything the main view renders for one filter selection.
type Dashboard struct {
	Totals            Totals              `json:"totais"`
	Projection        Projection          `json:"projecao"`
	Categories        []CategoryTotal     `json:"categorias"`
	RunningBalance    []BalancePoint      `json:"evolucaoSaldo"`
	TopCounterparties []CounterpartyTotal `json:"topDestinatarios"`
	Years             []string            `json:"anosDisponiveis"`
	YearOptions       []string            `json:"opcoesAnos"`
	CategoryOptions   []string            `json:"opcoesCategorias"`
	Count             int                 `json:"numeroTransacoes"`
}

// BuildDashboard filters all by c and derives the aggregates. The running
// balance and the selector options are computed over all, the rest over the
// filtered view.
func BuildDashboard(all []transactions.Transaction, c Criteria, now time.Time) (Dashboard, []transactions.Transaction) {
	filtered := Apply(all, c, now)
	totals := ComputeTotals(filtered)
	return Dashboard{
		Totals:            totals,
		Projection:        YearlyProjection(c.Period, totals.Inflow, totals.Outflow, now),
		Categories:        CategoryBreakdown(filtered),
		RunningBalance:    RunningBalance(all),
		TopCounterparties: TopCounterparties(filtered, DefaultCounterpartyLimit),
		Years:             AvailableYears(all),
		YearOptions:       YearOptions(now),
		CategoryOptions:   CategoryOptions(all),
		Count:             len(filtered),
	}, filtered
}
