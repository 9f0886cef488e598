package reddit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// GetPost returns a random post from the random listing of one of subreddits.
// It returns nil, nil when the listing has no (matching) children.
func (c *Client) GetPost(ctx context.Context, subreddits []string, retryLimit int) (*Post, error) {
	subreddit, ok := pick(c, subreddits)
	if !ok {
		return nil, ErrNoSubreddits
	}

	endpoint := fmt.Sprintf("/r/%s/random?count=50", url.PathEscape(subreddit))
	resp, err := c.fetch(ctx, endpoint, retryLimit)
	if err != nil {
		return nil, err
	}

	listings, err := decodeListings(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode listing for r/%s: %w", subreddit, err)
	}
	if len(listings) == 0 {
		return nil, nil
	}

	children := listings[0].Data.Children
	if c.filter != nil {
		children, err = c.filterChildren(children)
		if err != nil {
			return nil, err
		}
	}

	picked, ok := pick(c, children)
	if !ok {
		return nil, nil
	}
	post := picked.Data
	return &post, nil
}

// GetPostByID returns a single post from subreddit, or nil, nil when Reddit
// answers without one.
func (c *Client) GetPostByID(ctx context.Context, id, subreddit string, retryLimit int) (*Post, error) {
	endpoint := fmt.Sprintf("/r/%s/comments/%s", url.PathEscape(subreddit), url.PathEscape(id))
	resp, err := c.fetch(ctx, endpoint, retryLimit)
	if err != nil {
		return nil, err
	}

	listings, err := decodeListings(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode post %s: %w", id, err)
	}
	if len(listings) == 0 || len(listings[0].Data.Children) == 0 {
		return nil, nil
	}
	post := listings[0].Data.Children[0].Data
	return &post, nil
}

func (c *Client) filterChildren(children []child) ([]child, error) {
	kept := make([]child, 0, len(children))
	for i := range children {
		ok, err := c.filter.Match(&children[i].Data)
		if err != nil {
			return nil, fmt.Errorf("apply post filter: %w", err)
		}
		if ok {
			kept = append(kept, children[i])
		}
	}
	return kept, nil
}

// decodeListings accepts both shapes Reddit uses: a bare listing object, or an
// array of listings (post + comments).
func decodeListings(body json.RawMessage) ([]listing, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var listings []listing
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &listings); err != nil {
			return nil, err
		}
	} else {
		var single listing
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, err
		}
		listings = []listing{single}
	}
	for _, l := range listings {
		if l.Kind != "Listing" {
			return nil, fmt.Errorf("unexpected payload kind %q", l.Kind)
		}
	}
	return listings, nil
}
