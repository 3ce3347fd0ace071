package domain

// TrackListType represents the type of track list.
type TrackListType int

const (
	TrackListTypeEmpty TrackListType = iota
	TrackListTypeTrack
	TrackListTypePlaylist
	TrackListTypeSearch
)

// TrackList is the result of a track lookup: a single track, a named playlist,
// ordered search results, or nothing at all.
type TrackList struct {
	Type   TrackListType
	Name   string // Playlist name, empty for other types
	Tracks []*Track
}

// NewEmptyTrackList returns a successful lookup that matched nothing.
func NewEmptyTrackList() *TrackList {
	return &TrackList{Type: TrackListTypeEmpty}
}

// IsEmpty returns true if the list holds no tracks.
func (l *TrackList) IsEmpty() bool {
	return len(l.Tracks) == 0
}

// IsPlaylist returns true if the list is a named playlist.
func (l *TrackList) IsPlaylist() bool {
	return l.Type == TrackListTypePlaylist
}

// First returns the first track, or nil if the list is empty.
func (l *TrackList) First() *Track {
	if l.IsEmpty() {
		return nil
	}
	return l.Tracks[0]
}
