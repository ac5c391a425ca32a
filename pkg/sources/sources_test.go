package sources_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/quorum/pkg/profile"
	"github.com/agentstation/quorum/pkg/sources"
)

func TestCanonicalize(t *testing.T) {
	r := sources.New(profile.Default().Sources)

	tests := []struct {
		raw  string
		want string
	}{
		{"deepseek-v3.2", "DeepSeek"},
		{"DeepSeek", "DeepSeek"},
		{" gpt5.2-thinking ", "GPT-5.2"},
		{"Gemini-3-pro", "Gemini"},
		{"kimi-k2", "Kimi"},
		{"minimax", "MiniMax-M2.1"},
		{"Claude", "Claude"},
		{"  doubao ", "doubao"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Canonicalize(tt.raw))
		})
	}
}

func TestSort(t *testing.T) {
	r := sources.New(profile.Default().Sources)
	got := r.Sort([]string{"Qwen", "Claude", "DeepSeek", "Kimi", "Baichuan", "GPT-5.2", "Kimi"})
	assert.Equal(t, []string{"DeepSeek", "GPT-5.2", "Kimi", "Qwen", "Baichuan", "Claude"}, got)
}

func TestDedupe(t *testing.T) {
	r := sources.New(profile.Default().Sources)
	header := []string{"标的", "kimi-k2", "DeepSeek", "Kimi", "一致性"}

	names, cols := r.Dedupe(header, []int{1, 2, 3})
	assert.Equal(t, []string{"DeepSeek", "Kimi"}, names)
	assert.Equal(t, []int{1, 3}, cols["Kimi"])
	assert.Equal(t, []int{2}, cols["DeepSeek"])
}
