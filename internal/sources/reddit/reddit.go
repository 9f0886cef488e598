package reddit

import (
	"context"
	"encoding/json"
)

// DefaultRetryLimit is the attempt budget used when a caller passes a limit <= 0.
const DefaultRetryLimit = 10

// Version is reported in the default user agent.
var Version = "0.1.0"

// Response is a raw API reply. A zero StatusCode with a nil error means the
// transport gave up after repeated permission errors without reporting one.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// Transport performs authenticated GET requests against the Reddit API.
// Endpoints are API paths such as "/r/golang/random?count=50".
type Transport interface {
	Get(ctx context.Context, endpoint string) (Response, error)
}

// Post is the subset of a Reddit link the client works with.
type Post struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Title         string               `json:"title"`
	Subreddit     string               `json:"subreddit"`
	Author        string               `json:"author"`
	URL           string               `json:"url"`
	Permalink     string               `json:"permalink"`
	Domain        string               `json:"domain"`
	Score         int                  `json:"score"`
	Over18        bool                 `json:"over_18"`
	IsGallery     bool                 `json:"is_gallery"`
	MediaMetadata map[string]MediaItem `json:"media_metadata"`
	CreatedUTC    float64              `json:"created_utc"`
}

// MediaItem describes one gallery entry.
type MediaItem struct {
	Status string      `json:"status"`
	Source MediaSource `json:"s"`
}

type MediaSource struct {
	URL string `json:"u"`
}

// Filter reports whether a post may be picked from a listing.
type Filter interface {
	Match(post *Post) (bool, error)
}

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []child `json:"children"`
	} `json:"data"`
}

type child struct {
	Kind string `json:"kind"`
	Data Post   `json:"data"`
}
