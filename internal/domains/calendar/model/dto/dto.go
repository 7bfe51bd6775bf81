package dto

// FeedResult reports the outcome of importing one configured URL.
type FeedResult struct {
	URL      string `json:"url"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Overlaps int    `json:"overlaps"`
	Error    string `json:"error,omitempty"`
}

// ImportResult aggregates a room's import run across all its feeds.
// Per-URL errors are collected, never thrown: one dead feed must not
// abort the rest of the room's import.
type ImportResult struct {
	RoomID   string       `json:"room_id"`
	Imported int          `json:"imported"`
	Skipped  int          `json:"skipped"`
	Overlaps int          `json:"overlaps"`
	Feeds    []FeedResult `json:"feeds"`
}

func (r *ImportResult) Add(feed FeedResult) {
	r.Imported += feed.Imported
	r.Skipped += feed.Skipped
	r.Overlaps += feed.Overlaps
	r.Feeds = append(r.Feeds, feed)
}

// FeedResponse is a rendered outbound calendar.
type FeedResponse struct {
	RoomName string
	Filename string
	Body     []byte
}
