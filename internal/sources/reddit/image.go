package reddit

import (
	"context"
	"log/slog"
	"math/rand"
	"regexp"
	"sort"
	"strings"
)

var imageURLPattern = regexp.MustCompile(`(jpe?g|png|gif)`)

// GetImage keeps drawing random posts until one links an image, making at most
// retryLimit draws. Each draw uses DefaultRetryLimit for its own fetch; the
// outer limit only bounds the number of draws.
func (c *Client) GetImage(ctx context.Context, subreddits []string, retryLimit int) (string, error) {
	if retryLimit <= 0 {
		retryLimit = DefaultRetryLimit
	}

	logger := c.log(ctx)
	var post *Post
	retries := 0
	for retries < retryLimit {
		candidate, err := c.GetPost(ctx, subreddits, DefaultRetryLimit)
		if err != nil {
			return "", err
		}
		if candidate != nil && imageURLPattern.MatchString(candidate.URL) {
			logger.Debug("got an image", slog.String("url", candidate.URL), slog.String("post_id", candidate.ID))
			post = candidate
			break
		}
		retries++
		if retries == retryLimit {
			return "", &ExceededRetriesError{Message: "no image URL found: request retries limit exceeded"}
		}
		logger.Warn("no image URL found, repeating", slog.Int("retries", retries))
	}

	if post.IsGallery {
		c.mu.Lock()
		defer c.mu.Unlock()
		return ResolveGalleryImage(c.rand, post)
	}
	// imgur serves short videos as .gifv, which is not an image
	return strings.Replace(post.URL, "gifv", "gif", 1), nil
}

// ResolveGalleryImage returns a random valid image of a gallery post with
// HTML entities in its URL unescaped.
func ResolveGalleryImage(r *rand.Rand, post *Post) (string, error) {
	if post == nil {
		return "", ErrNoValidMedia
	}
	ids := make([]string, 0, len(post.MediaMetadata))
	for id, item := range post.MediaMetadata {
		if item.Status == "valid" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	id, ok := PickRandom(r, ids)
	if !ok {
		return "", ErrNoValidMedia
	}
	return strings.ReplaceAll(post.MediaMetadata[id].Source.URL, "&amp;", "&"), nil
}
