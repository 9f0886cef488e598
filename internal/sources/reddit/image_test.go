package reddit_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/bakkerme/random-reddit/internal/sources/reddit"
	"github.com/bakkerme/random-reddit/internal/sources/reddit/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetImage_URLRewrites(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://example.com/photo.png", "https://example.com/photo.png"},
		{"https://i.imgur.com/abc.gifv", "https://i.imgur.com/abc.gif"},
		{"https://i.redd.it/abc.jpeg", "https://i.redd.it/abc.jpeg"},
		{"https://i.imgur.com/gifv/abc.gifv", "https://i.imgur.com/gif/abc.gifv"},
	}
	for _, tc := range cases {
		transport := &mock.Transport{Responses: []reddit.Response{ok(listingJSON(t, map[string]any{"id": "a", "url": tc.url}))}}
		client, _ := newTestClient(t, transport)

		got, err := client.GetImage(context.Background(), []string{"pics"}, 3)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestGetImage_RetriesUntilImage(t *testing.T) {
	transport := &mock.Transport{Responses: []reddit.Response{
		ok(listingJSON(t, map[string]any{"id": "self", "url": "https://www.reddit.com/r/pics/comments/x/"})),
		ok(listingJSON(t)),
		ok(listingJSON(t, map[string]any{"id": "img", "url": "https://i.redd.it/y.jpg"})),
	}}
	client, logs := newTestClient(t, transport)

	got, err := client.GetImage(context.Background(), []string{"pics"}, 5)
	require.NoError(t, err)
	assert.Equal(t, "https://i.redd.it/y.jpg", got)
	assert.Equal(t, 3, transport.CallCount())
	assert.Equal(t, 2, logs.count("WARN"))
}

func TestGetImage_ExceedsRetries(t *testing.T) {
	transport := &mock.Transport{Responses: []reddit.Response{
		ok(listingJSON(t, map[string]any{"id": "self", "url": "https://www.reddit.com/r/pics/comments/x/"})),
	}}
	client, logs := newTestClient(t, transport)

	_, err := client.GetImage(context.Background(), []string{"pics"}, 3)
	assert.ErrorIs(t, err, reddit.ErrExceededRetries)
	assert.Equal(t, 3, transport.CallCount())
	assert.Equal(t, 2, logs.count("WARN"))
}

func TestGetImage_InnerFetchUsesDefaultLimit(t *testing.T) {
	transport := &mock.Transport{Responses: []reddit.Response{{StatusCode: 500}}}
	client, _ := newTestClient(t, transport)

	_, err := client.GetImage(context.Background(), []string{"pics"}, 2)
	assert.ErrorIs(t, err, reddit.ErrExceededRetries)
	assert.Equal(t, reddit.DefaultRetryLimit, transport.CallCount())
}

func TestGetImage_AccessDeniedPropagates(t *testing.T) {
	transport := &mock.Transport{Responses: []reddit.Response{{StatusCode: 403}}}
	client, _ := newTestClient(t, transport)

	_, err := client.GetImage(context.Background(), []string{"pics"}, 3)
	assert.ErrorIs(t, err, reddit.ErrAccessDenied)
	assert.Equal(t, 1, transport.CallCount())
}

func TestGetImage_Gallery(t *testing.T) {
	post := map[string]any{
		"id":         "g",
		"url":        "https://www.reddit.com/gallery/g?format=png",
		"is_gallery": true,
		"media_metadata": map[string]any{
			"a": map[string]any{"status": "valid", "s": map[string]any{"u": "https://preview.redd.it/a.jpg?width=640&amp;s=1"}},
			"b": map[string]any{"status": "failed", "s": map[string]any{"u": "https://preview.redd.it/b.jpg"}},
		},
	}
	transport := &mock.Transport{Responses: []reddit.Response{ok(listingJSON(t, post))}}
	client, _ := newTestClient(t, transport)

	got, err := client.GetImage(context.Background(), []string{"pics"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "https://preview.redd.it/a.jpg?width=640&s=1", got)
}

func TestResolveGalleryImage_OnlyValidEntries(t *testing.T) {
	post := &reddit.Post{
		IsGallery: true,
		MediaMetadata: map[string]reddit.MediaItem{
			"a": {Status: "valid", Source: reddit.MediaSource{URL: "url1&amp;x"}},
			"b": {Status: "removed", Source: reddit.MediaSource{URL: "url2"}},
		},
	}
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		got, err := reddit.ResolveGalleryImage(r, post)
		require.NoError(t, err)
		assert.Equal(t, "url1&x", got)
	}
}

func TestResolveGalleryImage_NoValidMedia(t *testing.T) {
	cases := []*reddit.Post{
		nil,
		{IsGallery: true},
		{IsGallery: true, MediaMetadata: map[string]reddit.MediaItem{"a": {Status: "failed"}}},
	}
	for _, post := range cases {
		_, err := reddit.ResolveGalleryImage(rand.New(rand.NewSource(1)), post)
		assert.ErrorIs(t, err, reddit.ErrNoValidMedia)
	}
}
