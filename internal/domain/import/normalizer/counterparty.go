package normalizer

import "strings"

// UnknownCounterparty labels descriptions with no recognizable counterparty.
const UnknownCounterparty = "Desconhecido"

const maxCounterpartyLen = 25

// counterpartyMarker locates a counterparty inside free text: the name starts
// after marker and ends at the first stop sequence.
type counterpartyMarker struct {
	marker string
	stops  []string
}

// Checked in order, first marker present wins.
var counterpartyMarkers = []counterpartyMarker{
	{marker: " - ", stops: []string{" - ", " (", " CNPJ:"}},
	{marker: "para ", stops: []string{"para ", " - "}},
	{marker: "POR ", stops: []string{"POR ", " - "}},
}

// ExtractCounterparty derives a counterparty name from a bank description such
// as "PIX ENVIADO - Fulano de Tal (123)" or "Transferência para Maria".
// Names longer than 25 characters are truncated with "...".
func ExtractCounterparty(description string) string {
	name := ""
	for _, m := range counterpartyMarkers {
		idx := strings.Index(description, m.marker)
		if idx < 0 {
			continue
		}
		name = cutAtFirst(description[idx+len(m.marker):], m.stops)
		break
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return UnknownCounterparty
	}

	runes := []rune(name)
	if len(runes) > maxCounterpartyLen {
		return string(runes[:maxCounterpartyLen]) + "..."
	}
	return name
}

func cutAtFirst(s string, stops []string) string {
	end := len(s)
	for _, stop := range stops {
		if i := strings.Index(s, stop); i >= 0 && i < end {
			end = i
		}
	}
	return s[:end]
}
