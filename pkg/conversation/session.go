package conversation

import (
	"context"
	"time"

	"ai-invoicing-be/pkg/intent"

	"github.com/google/uuid"
)

// Conversation states. A session always starts and ends in StateIdle.
const (
	StateIdle             = "idle"
	StateCollectingClient = "collecting_client"
	StateCollectingTitle  = "collecting_title"
	StateCollectingItems  = "collecting_items"
	StateConfirming       = "confirming"
)

// Channel identifiers
const (
	ChannelWeb = "web"
	ChannelBot = "bot"
)

// Candidate is one entry of a numbered client-disambiguation list. The list
// only lives inside the draft; once the user picks (or types anything that
// resolves) it is cleared, so a later numeric message is ordinary text again.
type Candidate struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Draft is the in-progress, not-yet-dispatched document being assembled
// during slot-filling.
type Draft struct {
	Type        string            `json:"type"`
	ClientID    *uuid.UUID        `json:"client_id,omitempty"`
	ClientName  string            `json:"client_name,omitempty"`
	ClientEmail string            `json:"client_email,omitempty"`
	NewClient   bool              `json:"new_client,omitempty"`
	Title       string            `json:"title,omitempty"`
	Items       []intent.LineItem `json:"items,omitempty"`
	Currency    string            `json:"currency,omitempty"`
	TaxRate     *float64          `json:"tax_rate,omitempty"`
	SendEmail   bool              `json:"send_email,omitempty"`
	Candidates  []Candidate       `json:"candidates,omitempty"`
}

// Session is the per-channel conversation state, keyed by
// channel + channel-native conversation id. At most one active draft exists
// per session.
type Session struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	TenantID  uuid.UUID `json:"tenant_id"`
	UserID    uuid.UUID `json:"user_id"`
	State     string    `json:"state"`
	Draft     *Draft    `json:"draft,omitempty"`
	LastInput string    `json:"last_input,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionKey builds the store key for a channel-native conversation id.
func SessionKey(channel, conversationID string) string {
	return channel + ":" + conversationID
}

// NewSession returns an idle session for the given identity.
func NewSession(channel, conversationID string, tenantID, userID uuid.UUID) *Session {
	return &Session{
		ID:       SessionKey(channel, conversationID),
		Channel:  channel,
		TenantID: tenantID,
		UserID:   userID,
		State:    StateIdle,
	}
}

// Reset discards the draft and returns the session to idle. Always safe to
// call, including from idle.
func (s *Session) Reset() {
	s.State = StateIdle
	s.Draft = nil
}

// Store is the injectable session store. Implementations must be shareable
// across process instances (Redis) or scoped to one (in-memory, for dev and
// tests); a missing session returns (nil, nil).
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

// Locker serializes the turns of one session. Slot-filling is sequential, so
// two messages of the same conversation must never interleave — not within a
// process and not across instances sharing the store. Acquire blocks until
// the lock is held and returns its release function.
type Locker interface {
	Acquire(ctx context.Context, id string) (release func(), err error)
}

// ToIntent converts a finished draft into a dispatchable creation intent.
func (d *Draft) ToIntent() *intent.Intent {
	in := &intent.Intent{
		Action:       intent.ActionCreateDocument,
		DocumentType: d.Type,
		ClientName:   d.ClientName,
		ClientEmail:  d.ClientEmail,
		Title:        d.Title,
		Items:        d.Items,
		Currency:     d.Currency,
		TaxRate:      d.TaxRate,
		SendEmail:    d.SendEmail,
		Confidence:   1.0, // slot-filled by the user directly
	}
	in.Finalize()
	return in
}
