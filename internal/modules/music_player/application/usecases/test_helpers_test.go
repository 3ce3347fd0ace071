package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

func mockTrack(id string) *domain.Track {
	return &domain.Track{
		Identifier: id,
		Encoded:    "encoded-" + id,
		Title:      "Track " + id,
		Artist:     "Artist",
		Duration:   3 * time.Minute,
	}
}

func mockTrackList(listType domain.TrackListType, name string, ids ...string) *domain.TrackList {
	list := &domain.TrackList{Type: listType, Name: name}
	for _, id := range ids {
		list.Tracks = append(list.Tracks, mockTrack(id))
	}
	return list
}

// mockAudioPlayer records started tracks. Tracks whose identifier is in failing fail to start.
type mockAudioPlayer struct {
	mu        sync.Mutex
	failing   map[string]bool
	stopErr   error
	played    []string
	stops     int
	deadlines []bool // whether each Play call's context had a deadline
}

func (m *mockAudioPlayer) Play(ctx context.Context, _ snowflake.ID, track *domain.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, hasDeadline := ctx.Deadline()
	m.deadlines = append(m.deadlines, hasDeadline)

	if m.failing[track.Identifier] {
		return errAudio
	}
	m.played = append(m.played, track.Identifier)
	return nil
}

func (m *mockAudioPlayer) Stop(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stops++
	return m.stopErr
}

func (m *mockAudioPlayer) playedTracks() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.played...)
}

func (m *mockAudioPlayer) stopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// mockVoiceConnection counts joins. If release is set, JoinChannel blocks until it is closed.
type mockVoiceConnection struct {
	mu       sync.Mutex
	joinErr  error
	leaveErr error
	release  chan struct{}
	joins    int
	leaves   int
}

func (m *mockVoiceConnection) JoinChannel(_ context.Context, _, _ snowflake.ID) error {
	if m.release != nil {
		<-m.release
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.joins++
	return m.joinErr
}

func (m *mockVoiceConnection) LeaveChannel(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.leaves++
	return m.leaveErr
}

func (m *mockVoiceConnection) leaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaves
}

func (m *mockVoiceConnection) joinCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.joins
}

// mockTrackResolver serves results keyed by Lavalink query and counts calls.
// If release is set, LoadTracks blocks until it is closed; blockOnly limits
// blocking to a single query.
type mockTrackResolver struct {
	mu        sync.Mutex
	results   map[string]*domain.TrackList
	err       error
	calls     map[string]int
	release   chan struct{}
	blockOnly string
}

func newMockTrackResolver() *mockTrackResolver {
	return &mockTrackResolver{
		results: make(map[string]*domain.TrackList),
		calls:   make(map[string]int),
	}
}

func (m *mockTrackResolver) LoadTracks(ctx context.Context, query string) (*domain.TrackList, error) {
	m.mu.Lock()
	m.calls[query]++
	release := m.release
	if m.blockOnly != "" && m.blockOnly != query {
		release = nil
	}
	m.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if result, ok := m.results[query]; ok {
		return result, nil
	}
	return domain.NewEmptyTrackList(), nil
}

func (m *mockTrackResolver) callCount(query string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[query]
}

// waitForCalls polls until the resolver has seen n calls for query.
func (m *mockTrackResolver) waitForCalls(t *testing.T, query string, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for m.callCount(query) < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d calls to %q", n, query)
		}
		time.Sleep(time.Millisecond)
	}
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	err      error
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(
	_, userID snowflake.ID,
) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

type testError string

func (e testError) Error() string { return string(e) }

const (
	errAudio    = testError("audio failure")
	errUpstream = testError("upstream failure")
	errConnect  = testError("websocket closed")
)

// createSession registers a session bound to channelID without going through a voice connection.
func createSession(
	registry *SessionRegistry,
	guildID, channelID snowflake.ID,
) *domain.Session {
	session, err := registry.GetOrCreate(
		context.Background(),
		guildID,
		channelID,
		func(context.Context) error { return nil },
	)
	if err != nil {
		panic(err)
	}
	return session
}

// withSession runs fn on the guild's session under the guild lock.
func withSession(registry *SessionRegistry, guildID snowflake.ID, fn func(*domain.Session)) {
	_ = registry.WithGuild(guildID, func(g *Guild) error {
		fn(g.Session())
		return nil
	})
}
