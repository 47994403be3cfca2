package categorization

// Rule maps an uppercase keyword to a category label.
type Rule struct {
	Keyword  string
	Category string
}

const (
	TransferCategory = "Transferência"
	PurchaseCategory = "Compras"
	FallbackCategory = "Outros"
)

// DefaultRules is evaluated top to bottom; the first keyword found in a
// description decides the category. Repeated keywords are kept on purpose so
// that the later entries stay visible but never win.
var DefaultRules = []Rule{
	{"TABACARIA", "Tabaco"},
	{"PANIFICADORA", "Alimentação"},
	{"PADARIA", "Alimentação"},
	{"RESTAURANTE", "Alimentação"},
	{"LANCHONETE", "Alimentação"},
	{"MERCADO", "Alimentação"},
	{"SUPERMERCADO", "Alimentação"},
	{"HORTIFRUTI", "Alimentação"},
	{"ACOUGUE", "Alimentação"},
	{"UBER", "Transporte"},
	{"TAXI", "Transporte"},
	{"POSTO", "Transporte"},
	{"COMBUSTIVEL", "Transporte"},
	{"ESTACIONAMENTO", "Transporte"},
	{"FARMACIA", "Saúde"},
	{"DROGARIA", "Saúde"},
	{"HOSPITAL", "Saúde"},
	{"CLINICA", "Saúde"},
	{"DENTISTA", "Saúde"},
	{"CINEMA", "Entretenimento"},
	{"SHOPPING", "Entretenimento"},
	{"LOJA", "Compras"},
	{"SUPERMERCADO", "Compras"},
	{"MERCADO", "Compras"},
	{"PIX", "Transferência"},
	{"TED", "Transferência"},
	{"DOC", "Transferência"},
	{"TRANSFERENCIA", "Transferência"},
	{"SAUDE", "Saúde"},
	{"EDUCACAO", "Educação"},
	{"ESCOLA", "Educação"},
	{"FACULDADE", "Educação"},
	{"INTERNET", "Utilidades"},
	{"AGUA", "Utilidades"},
	{"LUZ", "Utilidades"},
	{"TELEFONE", "Utilidades"},
}

// Fallback keyword groups, checked in order when no rule matched.
var (
	transferFallback = []string{"PIX", "TED", "DOC", "TRANSF"}
	purchaseFallback = []string{"LOJA", "SUPER", "MERCAD"}
)
