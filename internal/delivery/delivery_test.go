package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bakkerme/random-reddit/internal/config"
	emailmock "github.com/bakkerme/random-reddit/internal/outputs/email/mock"
	"github.com/bakkerme/random-reddit/internal/sources/reddit"
)

func TestDeliver_RendersPostAsHTML(t *testing.T) {
	sender := &emailmock.Sender{}
	d := New(sender, config.EmailOutput{From: "bot@example.com", To: "me@example.com", Subject: "Today in r/{{subreddit}}"})

	pick := Pick{
		Subreddits: []string{"pics"},
		Post: &reddit.Post{
			Title:     "A *great* view",
			Subreddit: "pics",
			Author:    "someone",
			Permalink: "/r/pics/comments/abc/a_great_view/",
			Score:     42,
		},
		ImageURL: "https://i.redd.it/abc.jpg",
	}
	require.NoError(t, d.Deliver(context.Background(), pick))
	require.Len(t, sender.Messages, 1)

	msg := sender.Messages[0]
	assert.Equal(t, "Today in r/pics", msg.Subject)
	assert.Equal(t, "me@example.com", msg.To)
	assert.Contains(t, msg.HTMLBody, `<img src="https://i.redd.it/abc.jpg"`)
	assert.Contains(t, msg.HTMLBody, `href="https://www.reddit.com/r/pics/comments/abc/a_great_view/"`)
	assert.Contains(t, msg.HTMLBody, "A *great* view")
	assert.Contains(t, msg.TextBody, "score 42")
}

func TestDeliver_ImageOnly(t *testing.T) {
	sender := &emailmock.Sender{}
	d := New(sender, config.EmailOutput{To: "me@example.com", Subject: "r/{{subreddit}}"})

	require.NoError(t, d.Deliver(context.Background(), Pick{Subreddits: []string{"pics", "aww"}, ImageURL: "https://i.imgur.com/x.gif"}))
	msg := sender.Messages[0]
	assert.Equal(t, "r/pics+aww", msg.Subject)
	assert.Contains(t, msg.HTMLBody, `<img src="https://i.imgur.com/x.gif"`)
	assert.Contains(t, msg.TextBody, "From r/pics, r/aww")
}

func TestDeliver_WrapsSenderError(t *testing.T) {
	boom := errors.New("smtp down")
	d := New(&emailmock.Sender{Err: boom}, config.EmailOutput{To: "me@example.com"})

	err := d.Deliver(context.Background(), Pick{ImageURL: "https://i.redd.it/a.png"})
	assert.ErrorIs(t, err, boom)
}
