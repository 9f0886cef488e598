package rules

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/bakkerme/random-reddit/internal/sources/reddit"
)

// Rule is a compiled boolean expression over a post, e.g. `score > 100 && !over_18`.
type Rule struct {
	source  string
	program *vm.Program
}

func Compile(source string) (*Rule, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("post filter expression is required")
	}
	program, err := expr.Compile(source, expr.Env(postEnv(&reddit.Post{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile post filter: %w", err)
	}
	return &Rule{source: source, program: program}, nil
}

func (r *Rule) String() string {
	return r.source
}

// Match implements reddit.Filter.
func (r *Rule) Match(post *reddit.Post) (bool, error) {
	if post == nil {
		return false, nil
	}
	result, err := expr.Run(r.program, postEnv(post))
	if err != nil {
		return false, fmt.Errorf("evaluate post filter %q: %w", r.source, err)
	}
	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("post filter did not return bool")
	}
	return matched, nil
}

func postEnv(post *reddit.Post) map[string]interface{} {
	return map[string]interface{}{
		"id":         post.ID,
		"title":      post.Title,
		"url":        post.URL,
		"author":     post.Author,
		"subreddit":  post.Subreddit,
		"domain":     post.Domain,
		"score":      post.Score,
		"over_18":    post.Over18,
		"is_gallery": post.IsGallery,
	}
}
