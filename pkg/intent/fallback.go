package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// The deterministic fallback guarantees the system degrades to something
// actionable when no AI backend is reachable, at markedly lower confidence.
const fallbackConfidence = 0.3

var (
	emailRe     = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	numberRe    = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	docNumberRe = regexp.MustCompile(`\b([A-Z]{2,4}-\d{3,})\b`)
	// A run of capitalized words following "para"/"de", e.g. "para Omar Ortiz"
	// or "de Cranealo S.A.". Keeps trailing corporate suffixes.
	clientNameRe = regexp.MustCompile(`(?:para|de)\s+((?:\p{Lu}[\p{L}.&]*\s*)+)`)
	conceptRe    = regexp.MustCompile(`(?i)concepto\s+([^,.;]+)`)
)

// FallbackParse turns a raw message into an Intent via keyword and regex
// matching alone. It never errors and never touches storage.
func FallbackParse(rawText string, tenantCtx TenantContext) *Intent {
	lower := strings.ToLower(rawText)
	out := &Intent{Action: ActionUnknown, Confidence: fallbackConfidence}

	docType := detectDocType(lower)
	docRef := detectDocumentRef(rawText, lower)

	switch {
	case containsAny(lower, "cliente") && containsAny(lower, "lista", "listar", "list", "muestra", "ver", "show"):
		out.Action = ActionListClients

	case docRef != "" && containsAny(lower, "pagada", "pagado", "paid", "aceptada", "aceptado", "accepted", "rechazada", "rechazado", "rejected", "marca", "mark", "marcar"):
		out.Action = ActionUpdateStatus
		out.DocumentID = docRef
		out.DocumentType = docType
		out.TargetStatus = detectStatus(lower)

	case docRef != "" && containsAny(lower, "envía", "envia", "enviar", "send", "manda", "mandar"):
		out.Action = ActionSendDocument
		out.DocumentID = docRef

	case containsAny(lower, "crea", "crear", "create", "genera", "generar", "hazme", "nueva", "nuevo", "new") && docType != "":
		out.Action = ActionCreateDocument
		out.DocumentType = docType
		fillCreateFields(out, rawText, lower)

	case containsAny(lower, "facturas", "invoices", "cotizaciones", "quotes", "presupuestos") ||
		(docType != "" && containsAny(lower, "lista", "listar", "list", "muestra", "ver", "show")):
		out.Action = ActionListDocuments
		out.DocumentType = docType
		out.ClientFilter = extractClientName(rawText)

	case docType != "" && largestAmount(lower) > 0:
		// No explicit verb, but a document word plus an amount is close
		// enough to a creation request to act on.
		out.Action = ActionCreateDocument
		out.DocumentType = docType
		fillCreateFields(out, rawText, lower)
	}

	out.Finalize()
	return out
}

func fillCreateFields(out *Intent, rawText, lower string) {
	out.ClientName = extractClientName(rawText)
	if email := emailRe.FindString(rawText); email != "" {
		out.ClientEmail = email
	}
	out.Currency = detectCurrency(lower)

	description := "Servicios"
	if m := conceptRe.FindStringSubmatch(rawText); len(m) == 2 {
		description = strings.TrimSpace(m[1])
	}

	// The largest numeric token becomes the unit price of a single
	// auto-generated line item.
	if price := largestAmount(lower); price > 0 {
		out.Items = []LineItem{{
			Description: description,
			Quantity:    1,
			UnitPrice:   price,
		}}
	}
}

func detectDocType(lower string) string {
	if strings.Contains(lower, "factura") || strings.Contains(lower, "invoice") {
		return DocTypeInvoice
	}
	if strings.Contains(lower, "cotiz") || strings.Contains(lower, "quote") || strings.Contains(lower, "presupuesto") {
		return DocTypeQuote
	}
	return ""
}

func detectStatus(lower string) string {
	switch {
	case containsAny(lower, "pagada", "pagado", "paid"):
		return StatusPaid
	case containsAny(lower, "aceptada", "aceptado", "accepted"):
		return StatusAccepted
	case containsAny(lower, "rechazada", "rechazado", "rejected"):
		return StatusRejected
	case containsAny(lower, "enviada", "enviado", "sent"):
		return StatusSent
	}
	return ""
}

func detectCurrency(lower string) string {
	switch {
	case containsAny(lower, "usd", "dólar", "dolar", "$"):
		return "USD"
	case containsAny(lower, "eur", "euro", "€"):
		return "EUR"
	}
	return ""
}

func detectDocumentRef(rawText, lower string) string {
	if m := docNumberRe.FindStringSubmatch(rawText); len(m) == 2 {
		return m[1]
	}
	if containsAny(lower, "última", "ultima", "last one", "the last") {
		return "last"
	}
	return ""
}

func extractClientName(rawText string) string {
	m := clientNameRe.FindStringSubmatch(rawText)
	if len(m) != 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func largestAmount(lower string) float64 {
	var max float64
	for _, tok := range numberRe.FindAllString(lower, -1) {
		tok = strings.ReplaceAll(tok, ",", ".")
		if v, err := strconv.ParseFloat(tok, 64); err == nil && v > max {
			max = v
		}
	}
	return max
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
