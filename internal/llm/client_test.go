package llm

import "testing"

func TestCost(t *testing.T) {
	c := New("key", "model", 2000, 0.002)

	cases := []struct {
		usage Usage
		want  float64
	}{
		{Usage{PromptTokens: 500, CompletionTokens: 500}, 0.002},
		{Usage{PromptTokens: 250, CompletionTokens: 250}, 0.001},
		{Usage{}, 0},
	}
	for _, tc := range cases {
		if got := c.Cost(tc.usage); got != tc.want {
			t.Errorf("Cost(%+v) = %v, want %v", tc.usage, got, tc.want)
		}
	}
}

func TestUsageTotal(t *testing.T) {
	u := Usage{PromptTokens: 120, CompletionTokens: 80}
	if got := u.Total(); got != 200 {
		t.Errorf("Total() = %d, want 200", got)
	}
}
