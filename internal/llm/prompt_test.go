package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestClip(t *testing.T) {
	assert.Equal(t, "short", Clip("short", 10))
	assert.Equal(t, "abcd...", Clip("abcdefgh", 4))

	// "é" is two bytes; a cut at byte 4 would split the second one.
	got := Clip("éééé", 3)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "é...", got)

	long := strings.Repeat("日本", 1000)
	for _, n := range []int{1, 2, 3, 4, 5, 1999} {
		clipped := Clip(long, n)
		assert.True(t, utf8.ValidString(clipped), "max %d", n)
		assert.LessOrEqual(t, len(strings.TrimSuffix(clipped, "...")), n)
	}
}
