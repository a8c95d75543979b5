package conversation

import (
	"testing"

	"ai-invoicing-be/pkg/intent"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idleSession() *Session {
	return NewSession(ChannelWeb, "conv-1", uuid.New(), uuid.New())
}

func knownClients() []intent.ClientRef {
	return []intent.ClientRef{
		{ID: uuid.New(), Name: "Cranealo S.A.", Email: "sa@cranealo.example"},
		{ID: uuid.New(), Name: "Cranealo Studio", Email: "studio@cranealo.example"},
		{ID: uuid.New(), Name: "Acme", Email: "billing@acme.example"},
	}
}

func parse(text string) *intent.Intent {
	return intent.FallbackParse(text, intent.TenantContext{})
}

func TestCompleteHighConfidenceIntentDispatchesImmediately(t *testing.T) {
	engine := NewEngine()
	sess := idleSession()

	in := parse("crea una cotización para Acme de 500 euros, concepto hosting")
	in.Confidence = 0.9 // as a structured backend would report

	out := engine.HandleIntent(sess, in, knownClients())

	require.NotNil(t, out.Dispatch)
	assert.Equal(t, intent.ActionCreateDocument, out.Dispatch.Action)
	assert.Equal(t, StateIdle, sess.State)
}

func TestCompleteLowConfidenceIntentAsksForConfirmation(t *testing.T) {
	engine := NewEngine()
	sess := idleSession()

	out := engine.HandleIntent(sess, parse("crea una cotización para Acme de 500 euros, concepto hosting"), knownClients())

	require.Nil(t, out.Dispatch)
	assert.Equal(t, StateConfirming, sess.State)
	require.NotNil(t, sess.Draft)

	confirmed := engine.HandleTurn(sess, "sí", knownClients())
	require.NotNil(t, confirmed.Dispatch)
	assert.Equal(t, "Acme", confirmed.Dispatch.ClientName)
}

func TestIncompleteCreationStartsSlotFilling(t *testing.T) {
	engine := NewEngine()
	sess := idleSession()

	out := engine.HandleIntent(sess, parse("crea una factura"), knownClients())

	require.Nil(t, out.Dispatch)
	assert.Equal(t, StateCollectingClient, sess.State)

	// Unknown name: stored on the draft, no record created yet.
	out = engine.HandleTurn(sess, "Omar Ortiz", knownClients())
	require.Nil(t, out.Dispatch)
	assert.Equal(t, StateCollectingTitle, sess.State)
	assert.Equal(t, "Omar Ortiz", sess.Draft.ClientName)
	assert.True(t, sess.Draft.NewClient)
	assert.Nil(t, sess.Draft.ClientID)

	out = engine.HandleTurn(sess, "Mantenimiento web", knownClients())
	require.Nil(t, out.Dispatch)
	assert.Equal(t, StateCollectingItems, sess.State)

	out = engine.HandleTurn(sess, "Hosting anual | 1 | 300", knownClients())
	require.Nil(t, out.Dispatch)
	assert.Len(t, sess.Draft.Items, 1)

	out = engine.HandleTurn(sess, "listo", knownClients())
	require.NotNil(t, out.Dispatch)
	assert.Equal(t, "Mantenimiento web", out.Dispatch.Title)
	require.Len(t, out.Dispatch.Items, 1)
	assert.Equal(t, float64(300), out.Dispatch.Items[0].UnitPrice)
}

func TestAmbiguousClientPresentsNumberedCandidates(t *testing.T) {
	engine := NewEngine()
	sess := idleSession()

	engine.HandleIntent(sess, parse("crea una factura"), knownClients())
	out := engine.HandleTurn(sess, "Cranealo", knownClients())

	assert.Equal(t, StateCollectingClient, sess.State)
	assert.Len(t, sess.Draft.Candidates, 2)
	assert.Contains(t, out.Reply, "1. Cranealo S.A.")
	assert.Contains(t, out.Reply, "2. Cranealo Studio")

	out = engine.HandleTurn(sess, "2", knownClients())
	require.Nil(t, out.Dispatch)
	assert.Equal(t, "Cranealo Studio", sess.Draft.ClientName)
	assert.NotNil(t, sess.Draft.ClientID)
	// The candidate list is consumed on selection.
	assert.Empty(t, sess.Draft.Candidates)
	assert.Equal(t, StateCollectingTitle, sess.State)
}

func TestNumericInputWithoutCandidatesIsOrdinaryText(t *testing.T) {
	engine := NewEngine()
	sess := idleSession()

	engine.HandleIntent(sess, parse("crea una factura"), knownClients())
	out := engine.HandleTurn(sess, "2", knownClients())

	// "2" is just a (new) client name here, not a stale selection.
	assert.Equal(t, StateCollectingTitle, sess.State)
	assert.Equal(t, "2", sess.Draft.ClientName)
	assert.NotNil(t, out.Reply)
}

func TestOutOfRangeSelectionReprompts(t *testing.T) {
	engine := NewEngine()
	sess := idleSession()

	engine.HandleIntent(sess, parse("crea una factura"), knownClients())
	engine.HandleTurn(sess, "Cranealo", knownClients())
	out := engine.HandleTurn(sess, "7", knownClients())

	assert.Equal(t, StateCollectingClient, sess.State)
	assert.Contains(t, out.Reply, "entre 1 y 2")
	assert.Len(t, sess.Draft.Candidates, 2)
}

func TestNewKeywordCreatesClientAtDispatchTime(t *testing.T) {
	engine := NewEngine()
	sess := idleSession()

	engine.HandleIntent(sess, parse("crea una factura"), knownClients())
	engine.HandleTurn(sess, "Cranealo", knownClients())
	engine.HandleTurn(sess, "nuevo", knownClients())

	assert.True(t, sess.Draft.NewClient)
	assert.Empty(t, sess.Draft.Candidates)
	assert.Equal(t, StateCollectingTitle, sess.State)
}

func TestDoneWithZeroItemsStaysCollecting(t *testing.T) {
	engine := NewEngine()
	sess := idleSession()

	engine.HandleIntent(sess, parse("crea una factura"), knownClients())
	engine.HandleTurn(sess, "Acme", knownClients())
	engine.HandleTurn(sess, "Servicios varios", knownClients())
	out := engine.HandleTurn(sess, "listo", knownClients())

	require.Nil(t, out.Dispatch)
	assert.Equal(t, StateCollectingItems, sess.State)
	assert.Contains(t, out.Reply, "al menos uno")
}

func TestMalformedItemLineReprompts(t *testing.T) {
	engine := NewEngine()
	sess := idleSession()

	engine.HandleIntent(sess, parse("crea una factura"), knownClients())
	engine.HandleTurn(sess, "Acme", knownClients())
	engine.HandleTurn(sess, "Servicios varios", knownClients())
	out := engine.HandleTurn(sess, "esto no es un concepto válido", knownClients())

	require.Nil(t, out.Dispatch)
	assert.Contains(t, out.Reply, "descripción | cantidad | precio")
	assert.Empty(t, sess.Draft.Items)
}

func TestCancelFromAnyStateResetsToIdle(t *testing.T) {
	engine := NewEngine()
	sess := idleSession()

	engine.HandleIntent(sess, parse("crea una factura"), knownClients())
	engine.HandleTurn(sess, "Acme", knownClients())
	require.Equal(t, StateCollectingTitle, sess.State)

	engine.HandleTurn(sess, "cancela", knownClients())
	assert.Equal(t, StateIdle, sess.State)
	assert.Nil(t, sess.Draft)
}

func TestCancelIsIdempotentFromIdle(t *testing.T) {
	engine := NewEngine()
	sess := idleSession()

	engine.Cancel(sess)
	assert.Equal(t, StateIdle, sess.State)
	assert.Nil(t, sess.Draft)

	engine.Cancel(sess)
	assert.Equal(t, StateIdle, sess.State)
	assert.Nil(t, sess.Draft)
}

func TestCreationCommandMidDraftAsksBeforeDiscarding(t *testing.T) {
	engine := NewEngine()
	sess := idleSession()

	engine.HandleIntent(sess, parse("crea una factura"), knownClients())
	engine.HandleTurn(sess, "Acme", knownClients())

	out := engine.HandleIntent(sess, parse("crea una cotización"), knownClients())

	require.Nil(t, out.Dispatch)
	assert.Contains(t, out.Reply, "borrador")
	// The prior draft is never silently merged away.
	assert.Equal(t, StateCollectingTitle, sess.State)
	assert.Equal(t, "Acme", sess.Draft.ClientName)
}

func TestConfirmNoDiscardsDraft(t *testing.T) {
	engine := NewEngine()
	sess := idleSession()

	engine.HandleIntent(sess, parse("crea una cotización para Acme de 500 euros, concepto hosting"), knownClients())
	require.Equal(t, StateConfirming, sess.State)

	out := engine.HandleTurn(sess, "no", knownClients())
	require.Nil(t, out.Dispatch)
	assert.Equal(t, StateIdle, sess.State)
	assert.Nil(t, sess.Draft)
	assert.Contains(t, out.Reply, "cancelado")
}
