package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestFold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "full-width brackets and digits", input: "Vivo S30（１２＋５１２）", expected: "vivo s30(12+512)"},
		{name: "ideographic space", input: "华为　Mate60 Pro", expected: "华为 mate60 pro"},
		{name: "collapses runs", input: "  iPhone   17  Pro ", expected: "iphone 17 pro"},
		{name: "keeps CJK", input: "可可黑", expected: "可可黑"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Fold(tt.input))
		})
	}
}

func TestRuneLen(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 3, RuneLen("可可黑"))
	assert.Equal(t, 4, RuneLen("s30p"))
}

func TestHasHan(t *testing.T) {
	t.Parallel()
	assert.True(t, HasHan("vivo 全网通"))
	assert.False(t, HasHan("vivo s30"))
}

func TestPropertyFoldIdempotent(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[a-zA-Z0-9 ()+（）＋０-９Ａ-Ｚ\x{3000}可黑蓝版全网通-]{0,40}`).Draw(t, "s")
		once := Fold(s)
		if twice := Fold(once); twice != once {
			t.Fatalf("Fold not idempotent: %q -> %q -> %q", s, once, twice)
		}
	})
}
