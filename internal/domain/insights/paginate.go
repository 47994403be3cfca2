package insights

import "github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"

const (
	// DefaultPerPage is the page size used when the caller gives none.
	DefaultPerPage = 50
	// MaxPerPage caps the page size.
	MaxPerPage = 500
)

// Page is one slice of a record list.
type Page struct {
	Items      []transactions.Transaction `json:"transacoes"`
	Page       int                        `json:"pagina"`
	PerPage    int                        `json:"porPagina"`
	Total      int                        `json:"total"`
	TotalPages int                        `json:"totalPaginas"`
}

// Paginate returns page (1-based) of records. Out of range pages are clamped
// to the nearest valid page and perPage to MaxPerPage.
func Paginate(records []transactions.Transaction, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	perPage = min(perPage, MaxPerPage)
	total := len(records)
	pages := (total + perPage - 1) / perPage
	if pages == 0 {
		pages = 1
	}
	page = max(1, min(page, pages))

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)
	return Page{
		Items:      records[start:end],
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: pages,
	}
}
