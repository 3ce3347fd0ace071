package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// voiceHandshake collects the VoiceStateUpdate and VoiceServerUpdate halves of a
// Discord voice connection. Lavalink rejects a partial voice state, so nothing is
// forwarded until both halves have arrived, in either order.
type voiceHandshake struct {
	mu sync.Mutex

	hasState  bool
	channelID *snowflake.ID
	sessionID string

	hasServer bool
	token     string
	endpoint  string

	done     chan struct{}
	doneOnce sync.Once
}

// voiceHandshakeData is a complete pair of voice events ready for Lavalink.
type voiceHandshakeData struct {
	channelID *snowflake.ID
	sessionID string
	token     string
	endpoint  string
}

func newVoiceHandshake() *voiceHandshake {
	return &voiceHandshake{done: make(chan struct{})}
}

// setState records the voice state half. It returns the complete data if the
// server half was already present, and resets for the next pair.
func (h *voiceHandshake) setState(channelID *snowflake.ID, sessionID string) (voiceHandshakeData, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hasState = true
	h.channelID = channelID
	h.sessionID = sessionID

	return h.takeLocked()
}

// setServer records the voice server half. See setState.
func (h *voiceHandshake) setServer(token, endpoint string) (voiceHandshakeData, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hasServer = true
	h.token = token
	h.endpoint = endpoint

	return h.takeLocked()
}

func (h *voiceHandshake) takeLocked() (voiceHandshakeData, bool) {
	if !h.hasState || !h.hasServer {
		return voiceHandshakeData{}, false
	}

	data := voiceHandshakeData{
		channelID: h.channelID,
		sessionID: h.sessionID,
		token:     h.token,
		endpoint:  h.endpoint,
	}

	h.hasState, h.hasServer = false, false
	h.channelID, h.sessionID = nil, ""
	h.token, h.endpoint = "", ""

	return data, true
}

// complete signals JoinChannel that the connection was handed to Lavalink.
func (h *voiceHandshake) complete() {
	h.doneOnce.Do(func() { close(h.done) })
}

// Done is closed once the first complete pair has been forwarded.
func (h *voiceHandshake) Done() <-chan struct{} {
	return h.done
}
