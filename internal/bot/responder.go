package bot

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Responder provides an abstraction for responding to Discord interactions.
// This interface enables testing handlers without a live Discord connection.
type Responder interface {
	// Respond sends the initial response to an interaction.
	Respond(response *discordgo.InteractionResponse) error
	// Defer acknowledges the interaction; the result is sent later with EditResponse.
	Defer() error
	// EditResponse replaces the content of a deferred or sent response.
	EditResponse(edit *discordgo.WebhookEdit) error
}

// AckResponder is a Responder that knows whether the interaction has been answered.
type AckResponder interface {
	Responder
	Acknowledged() bool
}

// DiscordResponder implements Responder using a live Discord session.
type DiscordResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction

	mu           sync.Mutex
	acknowledged bool
}

// NewDiscordResponder creates a new DiscordResponder.
func NewDiscordResponder(s *discordgo.Session, i *discordgo.Interaction) *DiscordResponder {
	return &DiscordResponder{
		session:     s,
		interaction: i,
	}
}

// Respond sends a response to the interaction via Discord API.
func (r *DiscordResponder) Respond(response *discordgo.InteractionResponse) error {
	if err := r.session.InteractionRespond(r.interaction, response); err != nil {
		return err
	}
	r.setAcknowledged()
	return nil
}

// Defer sends a deferred "thinking" response.
func (r *DiscordResponder) Defer() error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

// EditResponse edits the original interaction response.
func (r *DiscordResponder) EditResponse(edit *discordgo.WebhookEdit) error {
	_, err := r.session.InteractionResponseEdit(r.interaction, edit)
	return err
}

// Acknowledged reports whether Respond or Defer succeeded.
func (r *DiscordResponder) Acknowledged() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acknowledged
}

func (r *DiscordResponder) setAcknowledged() {
	r.mu.Lock()
	r.acknowledged = true
	r.mu.Unlock()
}

// MockResponder is a test double for Responder.
type MockResponder struct {
	LastResponse *discordgo.InteractionResponse
	LastEdit     *discordgo.WebhookEdit
	Deferred     bool
	Err          error
}

// Respond records the response for testing.
func (m *MockResponder) Respond(response *discordgo.InteractionResponse) error {
	m.LastResponse = response
	return m.Err
}

// Defer records that the interaction was deferred.
func (m *MockResponder) Defer() error {
	m.Deferred = true
	return m.Err
}

// EditResponse records the edit for testing.
func (m *MockResponder) EditResponse(edit *discordgo.WebhookEdit) error {
	m.LastEdit = edit
	return m.Err
}

// Acknowledged reports whether a response was recorded or the interaction deferred.
func (m *MockResponder) Acknowledged() bool {
	return m.Deferred || m.LastResponse != nil
}
