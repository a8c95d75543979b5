package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-invoicing-be/internal/pkg/logger"
	"ai-invoicing-be/pkg/llm"
)

const defaultBackendTimeout = 10 * time.Second

// Parser resolves free-text messages into canonical Intents. Backends are
// tried in priority order with a bounded timeout each; every failure falls
// through, ultimately to the deterministic fallback. Parse never returns an
// error past this boundary — a degraded Intent beats a propagated provider
// failure.
type Parser struct {
	backends       []llm.LLMProvider
	backendTimeout time.Duration
	logger         logger.ILogger
}

func NewParser(backends []llm.LLMProvider, backendTimeout time.Duration, log logger.ILogger) *Parser {
	if backendTimeout <= 0 {
		backendTimeout = defaultBackendTimeout
	}
	return &Parser{
		backends:       backends,
		backendTimeout: backendTimeout,
		logger:         log,
	}
}

// Parse analyzes the user message and produces a canonical Intent.
func (p *Parser) Parse(ctx context.Context, rawText string, tenantCtx TenantContext) *Intent {
	prompt := p.buildPrompt(rawText, tenantCtx)

	for _, backend := range p.backends {
		parsed, err := p.tryBackend(ctx, backend, prompt)
		if err != nil {
			p.logger.Warn("intent", "backend failed, falling through", map[string]interface{}{
				"backend": backend.Name(),
				"error":   err.Error(),
			})
			continue
		}
		parsed.Finalize()
		if parsed.Action == ActionUnknown && parsed.Confidence < 0.5 {
			continue
		}
		p.logger.Info("intent", "resolved", map[string]interface{}{
			"backend":    backend.Name(),
			"action":     parsed.Action,
			"complete":   parsed.Complete,
			"confidence": parsed.Confidence,
		})
		return parsed
	}

	p.logger.Info("intent", "no backend produced an intent, using deterministic fallback", nil)
	return FallbackParse(rawText, tenantCtx)
}

func (p *Parser) tryBackend(ctx context.Context, backend llm.LLMProvider, prompt string) (*Intent, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.backendTimeout)
	defer cancel()

	// Structured function-calling path when the backend supports it.
	if tp, ok := backend.(llm.ToolProvider); ok {
		result, err := tp.GenerateWithTools(callCtx, prompt, toolSpecs(), llm.WithTemperature(0.0))
		if err != nil {
			return nil, err
		}
		if result.Call != nil {
			return intentFromToolCall(result.Call)
		}
		return intentFromText(result.Text)
	}

	// Free-text path: the reply may carry an embedded JSON object.
	response, err := backend.Generate(callCtx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		return nil, err
	}
	return intentFromText(response)
}

func intentFromToolCall(call *llm.ToolCall) (*Intent, error) {
	var parsed Intent
	if err := json.Unmarshal(call.Arguments, &parsed); err != nil {
		return nil, fmt.Errorf("tool call arguments unmarshal failed: %w", err)
	}
	if parsed.Action == "" {
		parsed.Action = call.Name
	}
	if parsed.Confidence == 0 {
		parsed.Confidence = 0.9
	}
	return &parsed, nil
}

func intentFromText(response string) (*Intent, error) {
	jsonContent := ExtractJSON(response)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var parsed Intent
	if err := json.Unmarshal([]byte(jsonContent), &parsed); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}
	if parsed.Confidence == 0 {
		parsed.Confidence = 0.7
	}
	return &parsed, nil
}

func (p *Parser) buildPrompt(rawText string, tenantCtx TenantContext) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are an intent analyzer for a quoting/invoicing assistant. Your ONLY job is to classify what the user wants to DO.\n")
	prompt.WriteString("You do NOT answer questions and you do NOT invent data that is not in the message.\n")
	prompt.WriteString("The user may write in Spanish or English.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString("<tenant_context>\n")
	if len(tenantCtx.Clients) > 0 {
		prompt.WriteString("KNOWN_CLIENTS:\n")
		for _, c := range tenantCtx.Clients {
			prompt.WriteString(fmt.Sprintf("  - %q (%s)\n", c.Name, c.Email))
		}
	} else {
		prompt.WriteString("KNOWN_CLIENTS: none yet\n")
	}
	if len(tenantCtx.RecentDocuments) > 0 {
		prompt.WriteString("RECENT_DOCUMENTS (newest first, for references like 'the last one'):\n")
		for _, d := range tenantCtx.RecentDocuments {
			prompt.WriteString(fmt.Sprintf("  - %s [%s, %s] %q\n", d.Number, d.Type, d.Status, d.Title))
		}
	}
	prompt.WriteString("</tenant_context>\n\n")

	prompt.WriteString("<user_message>\n")
	prompt.WriteString(rawText)
	prompt.WriteString("\n</user_message>\n\n")

	prompt.WriteString("<intent_definitions>\n")
	prompt.WriteString("Choose ONE action that best matches what the user wants:\n\n")
	prompt.WriteString("create_document: User wants a new quote or invoice\n")
	prompt.WriteString("  - Requires: document_type (quote|invoice)\n")
	prompt.WriteString("  - Extract client_name, client_email, title, items, currency, tax_rate if present\n")
	prompt.WriteString("  - Leave fields EMPTY when the message does not state them\n\n")
	prompt.WriteString("update_status: User wants to change the status of an existing document\n")
	prompt.WriteString("  - Requires: document_id (a number like INV-0003, or 'last'), target_status\n\n")
	prompt.WriteString("send_document: User wants an existing document emailed to its client\n")
	prompt.WriteString("  - Requires: document_id\n\n")
	prompt.WriteString("list_documents: User wants to see documents, optionally filtered by client_filter\n\n")
	prompt.WriteString("list_clients: User wants to see their clients\n\n")
	prompt.WriteString("unknown: Message is unrelated to quotes, invoices or clients\n")
	prompt.WriteString("</intent_definitions>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"action\": \"create_document|update_status|send_document|list_documents|list_clients|unknown\",\n")
	prompt.WriteString("  \"document_type\": \"quote|invoice\",\n")
	prompt.WriteString("  \"client_name\": \"\",\n")
	prompt.WriteString("  \"client_email\": \"\",\n")
	prompt.WriteString("  \"title\": \"\",\n")
	prompt.WriteString("  \"items\": [{\"description\": \"\", \"quantity\": 1, \"unit_price\": 0}],\n")
	prompt.WriteString("  \"currency\": \"EUR\",\n")
	prompt.WriteString("  \"tax_rate\": 21,\n")
	prompt.WriteString("  \"document_id\": \"\",\n")
	prompt.WriteString("  \"target_status\": \"\",\n")
	prompt.WriteString("  \"client_filter\": \"\",\n")
	prompt.WriteString("  \"confidence\": 0.95\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

// toolSpecs advertises one function per intent variant so function-calling
// backends answer structurally instead of with embedded JSON.
func toolSpecs() []llm.ToolSpec {
	itemSchema := map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"description": map[string]interface{}{"type": "string"},
				"quantity":    map[string]interface{}{"type": "number"},
				"unit_price":  map[string]interface{}{"type": "number"},
			},
			"required": []string{"description", "unit_price"},
		},
	}

	return []llm.ToolSpec{
		{
			Name:        ActionCreateDocument,
			Description: "Create a new quote or invoice from the user's message",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"document_type": map[string]interface{}{"type": "string", "enum": []string{DocTypeQuote, DocTypeInvoice}},
					"client_name":   map[string]interface{}{"type": "string"},
					"client_email":  map[string]interface{}{"type": "string"},
					"title":         map[string]interface{}{"type": "string"},
					"items":         itemSchema,
					"currency":      map[string]interface{}{"type": "string"},
					"tax_rate":      map[string]interface{}{"type": "number"},
					"confidence":    map[string]interface{}{"type": "number"},
				},
				"required": []string{"document_type"},
			},
		},
		{
			Name:        ActionUpdateStatus,
			Description: "Change the status of an existing document",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"document_id":   map[string]interface{}{"type": "string"},
					"target_status": map[string]interface{}{"type": "string"},
					"confidence":    map[string]interface{}{"type": "number"},
				},
				"required": []string{"document_id", "target_status"},
			},
		},
		{
			Name:        ActionSendDocument,
			Description: "Email an existing document to its client",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"document_id": map[string]interface{}{"type": "string"},
					"confidence":  map[string]interface{}{"type": "number"},
				},
				"required": []string{"document_id"},
			},
		},
		{
			Name:        ActionListDocuments,
			Description: "List the tenant's documents, optionally filtered by client name",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"document_type": map[string]interface{}{"type": "string"},
					"client_filter": map[string]interface{}{"type": "string"},
					"limit":         map[string]interface{}{"type": "integer"},
				},
			},
		},
		{
			Name:        ActionListClients,
			Description: "List the tenant's clients",
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}
