package rules

import (
	"testing"

	"github.com/bakkerme/random-reddit/internal/sources/reddit"
)

func TestRuleMatchesPostFields(t *testing.T) {
	rule, err := Compile(`score > 100 && !over_18 && domain in ["i.redd.it", "i.imgur.com"]`)
	if err != nil {
		t.Fatalf("expected rule to compile, got error: %v", err)
	}

	cases := []struct {
		post reddit.Post
		want bool
	}{
		{reddit.Post{Score: 500, Domain: "i.redd.it"}, true},
		{reddit.Post{Score: 500, Domain: "i.redd.it", Over18: true}, false},
		{reddit.Post{Score: 10, Domain: "i.imgur.com"}, false},
		{reddit.Post{Score: 500, Domain: "youtube.com"}, false},
	}
	for _, tc := range cases {
		got, err := rule.Match(&tc.post)
		if err != nil {
			t.Fatalf("match failed: %v", err)
		}
		if got != tc.want {
			t.Errorf("Match(%+v) = %v, want %v", tc.post, got, tc.want)
		}
	}
}

func TestCompileRejectsInvalidRules(t *testing.T) {
	for _, source := range []string{"", "score >", `title + 1`, `unknown_field == 1`} {
		if _, err := Compile(source); err == nil {
			t.Errorf("Compile(%q) expected error", source)
		}
	}
}

func TestRuleImplementsFilter(t *testing.T) {
	var _ reddit.Filter = (*Rule)(nil)
}
