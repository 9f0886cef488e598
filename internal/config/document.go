package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ModePost  = "post"
	ModeImage = "image"
)

// Document describes what the CLI fetches and where the result goes.
type Document struct {
	Subreddits []string     `yaml:"subreddits"`
	Mode       string       `yaml:"mode"`
	RetryLimit int          `yaml:"retry_limit"`
	Filter     string       `yaml:"filter"`
	Schedule   string       `yaml:"schedule"`
	Timezone   string       `yaml:"timezone"`
	Email      *EmailOutput `yaml:"email"`
}

type EmailOutput struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Subject string `yaml:"subject"`
}

func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document %s: %w", path, err)
	}
	doc.applyDefaults()
	return &doc, nil
}

func (d *Document) applyDefaults() {
	subs := d.Subreddits[:0]
	for _, sub := range d.Subreddits {
		sub = strings.TrimPrefix(strings.TrimSpace(sub), "r/")
		if sub != "" {
			subs = append(subs, sub)
		}
	}
	d.Subreddits = subs
	d.Mode = strings.ToLower(strings.TrimSpace(d.Mode))
	if d.Mode == "" {
		d.Mode = ModeImage
	}
	if d.Email != nil && d.Email.Subject == "" {
		d.Email.Subject = "Random post from r/{{subreddit}}"
	}
}

func (d *Document) Validate() error {
	if len(d.Subreddits) == 0 {
		return fmt.Errorf("at least one subreddit is required")
	}
	switch d.Mode {
	case ModePost, ModeImage:
	default:
		return fmt.Errorf("unsupported mode %q (expected %s or %s)", d.Mode, ModePost, ModeImage)
	}
	if d.RetryLimit < 0 {
		return fmt.Errorf("retry_limit must be >= 0")
	}
	if d.Timezone != "" {
		if _, err := time.LoadLocation(d.Timezone); err != nil {
			return fmt.Errorf("invalid timezone: %w", err)
		}
	}
	if d.Email != nil && strings.TrimSpace(d.Email.To) == "" {
		return fmt.Errorf("email.to is required when email output is configured")
	}
	return nil
}

// CheckOutputs reports outputs the document asks for that env cannot serve.
func (d *Document) CheckOutputs(env EnvConfig) error {
	if d.Email != nil && !env.SMTP.Enabled() {
		return fmt.Errorf("email output is configured but SMTP_HOST is not set")
	}
	return nil
}
