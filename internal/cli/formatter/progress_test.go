package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0, ClampPercent(-20))
	assert.Equal(t, 0, ClampPercent(0))
	assert.Equal(t, 57, ClampPercent(57))
	assert.Equal(t, 100, ClampPercent(100))
	assert.Equal(t, 100, ClampPercent(140))
}

func TestRenderProgress_Label(t *testing.T) {
	tests := []struct {
		name string
		pct  int
		want string
	}{
		{"zero", 0, "  0%"},
		{"half", 50, " 50%"},
		{"full", 100, "100%"},
		{"over clamps", 150, "100%"},
		{"negative clamps", -5, "  0%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderProgress(tt.pct, 10)
			assert.True(t, strings.HasSuffix(got, tt.want), got)
		})
	}
}

func TestRenderCompactBar(t *testing.T) {
	tests := []struct {
		name   string
		pct    int
		width  int
		filled int
		total  int
	}{
		{"0%", 0, 4, 0, 4},
		{"50%", 50, 4, 2, 4},
		{"100%", 100, 4, 4, 4},
		{"over 100% clamps", 150, 4, 4, 4},
		{"negative clamps", -50, 4, 0, 4},
		{"tiny width clamps to 2", 50, 1, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderCompactBar(tt.pct, tt.width, true)
			assert.Equal(t, tt.filled, strings.Count(got, filledBlock))
			assert.Equal(t, tt.total, strings.Count(got, filledBlock)+strings.Count(got, emptyBlock))
			assert.NotContains(t, got, "%")
		})
	}
}
