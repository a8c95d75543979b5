package conversation

import (
	"fmt"
	"strconv"
	"strings"

	"ai-invoicing-be/pkg/intent"
)

// Below this confidence a complete single-turn draft is confirmed with the
// user before dispatch instead of executing directly.
const confirmThreshold = 0.5

// Outcome is what a turn produced: a reply to render, and optionally a
// complete intent the caller must dispatch. When Dispatch is set the caller
// clears the draft on success and keeps it on failure.
type Outcome struct {
	Reply    string
	Dispatch *intent.Intent
}

// Engine drives the multi-turn slot-filling protocol. Transitions depend only
// on (current state, normalized input, draft content) — never on the channel
// that delivered the message, so web chat and the bot behave identically.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// IsCancel reports whether the input is an explicit cancel command. Honored
// immediately from any state.
func IsCancel(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	switch t {
	case "cancel", "cancela", "cancelar", "olvídalo", "olvidalo", "stop":
		return true
	}
	return false
}

// Cancel discards the draft unconditionally. Idempotent: cancelling an idle
// session leaves it idle with an empty draft.
func (e *Engine) Cancel(sess *Session) Outcome {
	sess.Reset()
	return Outcome{Reply: "De acuerdo, he cancelado la operación. ¿En qué más puedo ayudarte?"}
}

// HandleIntent processes a freshly parsed intent for an idle session.
func (e *Engine) HandleIntent(sess *Session, in *intent.Intent, clients []intent.ClientRef) Outcome {
	if in.Action != intent.ActionCreateDocument {
		if in.Complete {
			return Outcome{Dispatch: in}
		}
		return Outcome{Reply: incompletePrompt(in)}
	}

	// A creation command mid-draft must resume or be explicitly discarded,
	// never silently merged with the previous one.
	if sess.Draft != nil {
		return Outcome{Reply: fmt.Sprintf(
			"Ya tienes un borrador de %s en curso. Continúa donde estabas, o escribe \"cancela\" para descartarlo y empezar de nuevo.",
			docTypeLabel(sess.Draft.Type))}
	}

	draft := draftFromIntent(in)

	if in.Complete {
		if in.Confidence >= confirmThreshold {
			// Single-turn path: dispatch immediately, stay idle.
			return Outcome{Dispatch: in}
		}
		// Low confidence (deterministic fallback): hold the draft and ask
		// for an explicit yes/no before touching anything.
		sess.Draft = draft
		sess.State = StateConfirming
		return Outcome{Reply: confirmPrompt(draft)}
	}

	// Incomplete creation: start slot-filling with whatever was extracted.
	sess.Draft = draft
	if strings.TrimSpace(draft.ClientName) == "" {
		sess.State = StateCollectingClient
		return Outcome{Reply: fmt.Sprintf("Voy a crear una %s. ¿Para qué cliente es?", docTypeLabel(draft.Type))}
	}

	resolution := intent.ResolveClient(draft.ClientName, clients)
	return e.applyClientResolution(sess, draft.ClientName, resolution)
}

// HandleTurn processes a message for a session that is mid-flow.
func (e *Engine) HandleTurn(sess *Session, text string, clients []intent.ClientRef) Outcome {
	if IsCancel(text) {
		return e.Cancel(sess)
	}

	switch sess.State {
	case StateCollectingClient:
		return e.collectClient(sess, text, clients)
	case StateCollectingTitle:
		return e.collectTitle(sess, text)
	case StateCollectingItems:
		return e.collectItem(sess, text)
	case StateConfirming:
		return e.confirm(sess, text)
	default:
		sess.Reset()
		return Outcome{Reply: "No tengo ninguna operación en curso. ¿Qué quieres hacer?"}
	}
}

func (e *Engine) collectClient(sess *Session, text string, clients []intent.ClientRef) Outcome {
	draft := sess.Draft
	if draft == nil {
		sess.Reset()
		return Outcome{Reply: "Algo se perdió por el camino. Empecemos de nuevo: ¿qué quieres crear?"}
	}

	trimmed := strings.TrimSpace(text)

	// A numeric selection only means something while a candidate list is
	// pending; afterwards numbers are ordinary text again.
	if len(draft.Candidates) > 0 {
		if n, err := strconv.Atoi(trimmed); err == nil {
			if n < 1 || n > len(draft.Candidates) {
				return Outcome{Reply: fmt.Sprintf("Responde con un número entre 1 y %d, o escribe \"nuevo\".", len(draft.Candidates))}
			}
			picked := draft.Candidates[n-1]
			draft.ClientID = &picked.ID
			draft.ClientName = picked.Name
			draft.ClientEmail = picked.Email
			draft.Candidates = nil
			return e.advanceAfterClient(sess)
		}
		if isNewKeyword(trimmed) {
			draft.NewClient = true
			draft.Candidates = nil
			return e.advanceAfterClient(sess)
		}
		// Anything else restarts resolution against the typed name.
		draft.Candidates = nil
	}

	if trimmed == "" {
		return Outcome{Reply: "Necesito un nombre de cliente para continuar."}
	}

	resolution := intent.ResolveClient(trimmed, clients)
	return e.applyClientResolution(sess, trimmed, resolution)
}

func (e *Engine) applyClientResolution(sess *Session, name string, resolution intent.Resolution) Outcome {
	draft := sess.Draft
	draft.ClientName = name

	switch {
	case resolution.Match != nil:
		draft.ClientID = &resolution.Match.ID
		draft.ClientName = resolution.Match.Name
		if draft.ClientEmail == "" {
			draft.ClientEmail = resolution.Match.Email
		}
		return e.advanceAfterClient(sess)

	case len(resolution.Candidates) > 0:
		draft.Candidates = make([]Candidate, len(resolution.Candidates))
		var b strings.Builder
		b.WriteString("He encontrado varios clientes parecidos:\n")
		for i, c := range resolution.Candidates {
			draft.Candidates[i] = Candidate{ID: c.ID, Name: c.Name, Email: c.Email}
			fmt.Fprintf(&b, "%d. %s\n", i+1, c.Name)
		}
		b.WriteString("Responde con el número, o escribe \"nuevo\" para crear un cliente nuevo.")
		sess.State = StateCollectingClient
		return Outcome{Reply: b.String()}

	default:
		// Brand-new name: the client record is created at dispatch time,
		// never during the conversation.
		draft.NewClient = true
		return e.advanceAfterClient(sess)
	}
}

func (e *Engine) advanceAfterClient(sess *Session) Outcome {
	if sess.Draft.Title == "" {
		sess.State = StateCollectingTitle
		return Outcome{Reply: "¿Qué título le pongo al documento?"}
	}
	return e.advanceAfterTitle(sess)
}

func (e *Engine) collectTitle(sess *Session, text string) Outcome {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Outcome{Reply: "Necesito un título, aunque sea corto."}
	}
	sess.Draft.Title = trimmed
	return e.advanceAfterTitle(sess)
}

func (e *Engine) advanceAfterTitle(sess *Session) Outcome {
	if len(sess.Draft.Items) > 0 {
		return e.finishDraft(sess)
	}
	sess.State = StateCollectingItems
	return Outcome{Reply: "Ahora añade conceptos con el formato: descripción | cantidad | precio.\nEscribe \"listo\" cuando termines."}
}

func (e *Engine) collectItem(sess *Session, text string) Outcome {
	trimmed := strings.TrimSpace(text)

	if isDoneKeyword(trimmed) {
		if len(sess.Draft.Items) == 0 {
			return Outcome{Reply: "Todavía no has añadido ningún concepto. Añade al menos uno antes de terminar."}
		}
		return e.finishDraft(sess)
	}

	item, err := parseItemLine(trimmed)
	if err != nil {
		return Outcome{Reply: "No he entendido el concepto. Usa: descripción | cantidad | precio (por ejemplo: Hosting | 1 | 500)."}
	}

	sess.Draft.Items = append(sess.Draft.Items, item)
	return Outcome{Reply: fmt.Sprintf("Añadido: %s (x%g, %.2f). Añade otro o escribe \"listo\".",
		item.Description, item.Quantity, item.UnitPrice)}
}

func (e *Engine) confirm(sess *Session, text string) Outcome {
	t := strings.ToLower(strings.TrimSpace(text))
	switch t {
	case "sí", "si", "yes", "ok", "vale", "confirmo", "dale", "s":
		if sess.Draft == nil {
			sess.Reset()
			return Outcome{Reply: "No había nada pendiente de confirmar."}
		}
		return e.finishDraft(sess)
	case "no", "n", "cancel", "cancela", "cancelar":
		return e.Cancel(sess)
	default:
		return Outcome{Reply: "Responde \"sí\" para confirmar o \"no\" para cancelar."}
	}
}

// finishDraft produces the dispatchable intent. The caller resets the session
// only after a successful dispatch so a failure keeps the draft recoverable.
func (e *Engine) finishDraft(sess *Session) Outcome {
	in := sess.Draft.ToIntent()
	if !in.Complete {
		// Should not happen if the flow is wired right; re-prompt instead
		// of dispatching a half-typed intent.
		if contains(in.Missing, "client_name") {
			sess.State = StateCollectingClient
			return Outcome{Reply: "¿Para qué cliente es el documento?"}
		}
		sess.State = StateCollectingItems
		return Outcome{Reply: "Falta al menos un concepto. Añádelo con: descripción | cantidad | precio."}
	}
	return Outcome{Dispatch: in}
}

func draftFromIntent(in *intent.Intent) *Draft {
	return &Draft{
		Type:        in.DocumentType,
		ClientName:  strings.TrimSpace(in.ClientName),
		ClientEmail: in.ClientEmail,
		Title:       in.Title,
		Items:       in.Items,
		Currency:    in.Currency,
		TaxRate:     in.TaxRate,
		SendEmail:   in.SendEmail,
	}
}

func confirmPrompt(d *Draft) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Voy a crear una %s para %s", docTypeLabel(d.Type), d.ClientName)
	if len(d.Items) > 0 {
		var total float64
		for _, it := range d.Items {
			total += it.Quantity * it.UnitPrice
		}
		fmt.Fprintf(&b, " por %.2f %s (sin impuestos)", total, currencyOrDefault(d.Currency))
	}
	b.WriteString(". ¿Confirmo? (sí/no)")
	return b.String()
}

func incompletePrompt(in *intent.Intent) string {
	switch in.Action {
	case intent.ActionUpdateStatus:
		return "¿Qué documento quieres actualizar y a qué estado? (por ejemplo: marca INV-0001 como pagada)"
	case intent.ActionSendDocument:
		return "¿Qué documento quieres enviar? Dime su número, por ejemplo INV-0001."
	default:
		return "No he entendido qué quieres hacer. Puedo crear facturas o cotizaciones, cambiar su estado, enviarlas por correo o listarlas."
	}
}

func parseItemLine(text string) (intent.LineItem, error) {
	parts := strings.Split(text, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch len(parts) {
	case 3:
		qty, err1 := parseNumber(parts[1])
		price, err2 := parseNumber(parts[2])
		if parts[0] == "" || err1 != nil || err2 != nil || qty <= 0 || price < 0 {
			return intent.LineItem{}, fmt.Errorf("malformed item line")
		}
		return intent.LineItem{Description: parts[0], Quantity: qty, UnitPrice: price}, nil
	case 2:
		price, err := parseNumber(parts[1])
		if parts[0] == "" || err != nil || price < 0 {
			return intent.LineItem{}, fmt.Errorf("malformed item line")
		}
		return intent.LineItem{Description: parts[0], Quantity: 1, UnitPrice: price}, nil
	default:
		return intent.LineItem{}, fmt.Errorf("malformed item line")
	}
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

func isDoneKeyword(text string) bool {
	t := strings.ToLower(text)
	return t == "listo" || t == "done" || t == "ya" || t == "terminar" || t == "fin"
}

func isNewKeyword(text string) bool {
	t := strings.ToLower(text)
	return t == "nuevo" || t == "nueva" || t == "new"
}

func docTypeLabel(docType string) string {
	if docType == intent.DocTypeInvoice {
		return "factura"
	}
	return "cotización"
}

func currencyOrDefault(c string) string {
	if c == "" {
		return "EUR"
	}
	return c
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
