package delivery

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/bakkerme/random-reddit/internal/config"
	"github.com/bakkerme/random-reddit/internal/outputs/email"
	"github.com/bakkerme/random-reddit/internal/sources/reddit"
)

// Pick is one result of a run: a post, an image URL, or both.
type Pick struct {
	Subreddits []string
	Post       *reddit.Post
	ImageURL   string
}

// Markdown renders the pick as a short markdown note.
func (p Pick) Markdown() string {
	var b strings.Builder
	if p.Post != nil {
		fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(p.Post.Title))
	}
	image := p.ImageURL
	if image == "" && p.Post != nil {
		image = p.Post.URL
	}
	if image != "" {
		fmt.Fprintf(&b, "![image](%s)\n\n", image)
	}
	if p.Post != nil {
		fmt.Fprintf(&b, "[r/%s](%s) by u/%s, score %d\n", p.Post.Subreddit, permalinkURL(p.Post.Permalink), p.Post.Author, p.Post.Score)
	} else if len(p.Subreddits) > 0 {
		fmt.Fprintf(&b, "From r/%s\n", strings.Join(p.Subreddits, ", r/"))
	}
	return b.String()
}

type Deliverer struct {
	sender    email.Sender
	output    config.EmailOutput
	converter goldmark.Markdown
}

func New(sender email.Sender, output config.EmailOutput) *Deliverer {
	return &Deliverer{
		sender: sender,
		output: output,
		converter: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

func (d *Deliverer) Deliver(ctx context.Context, pick Pick) error {
	text := pick.Markdown()
	var buf bytes.Buffer
	if err := d.converter.Convert([]byte(text), &buf); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}

	subreddit := strings.Join(pick.Subreddits, "+")
	if pick.Post != nil && pick.Post.Subreddit != "" {
		subreddit = pick.Post.Subreddit
	}
	message := email.Message{
		From:     d.output.From,
		To:       d.output.To,
		Subject:  strings.ReplaceAll(d.output.Subject, "{{subreddit}}", subreddit),
		HTMLBody: buf.String(),
		TextBody: text,
	}
	if err := d.sender.Send(ctx, message); err != nil {
		return fmt.Errorf("deliver email to %s: %w", d.output.To, err)
	}
	return nil
}

func permalinkURL(permalink string) string {
	if permalink == "" || strings.HasPrefix(permalink, "http://") || strings.HasPrefix(permalink, "https://") {
		return permalink
	}
	if !strings.HasPrefix(permalink, "/") {
		permalink = "/" + permalink
	}
	return "https://www.reddit.com" + permalink
}

var markdownEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "#", `\#`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
