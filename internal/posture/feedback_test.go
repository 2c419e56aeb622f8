package posture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortBySeverity(t *testing.T) {
	in := []Feedback{
		good("a", "1"),
		warning("b", "2"),
		fault("c", "3"),
		good("d", "4"),
		fault("e", "5"),
		warning("f", "6"),
	}

	got := SortBySeverity(in)

	var parts []string
	for _, f := range got {
		parts = append(parts, f.BodyPart)
	}
	assert.Equal(t, []string{"c", "e", "b", "f", "a", "d"}, parts)

	// input untouched
	assert.Equal(t, "a", in[0].BodyPart)
	assert.Empty(t, SortBySeverity(nil))
}

func TestFormScore(t *testing.T) {
	tests := []struct {
		name   string
		fb     []Feedback
		want   int
		scored bool
	}{
		{"empty", nil, 0, false},
		{"all good", []Feedback{good("a", ""), good("b", "")}, 100, true},
		{"half", []Feedback{good("a", ""), fault("b", "")}, 50, true},
		{"two of three", []Feedback{good("a", ""), good("b", ""), warning("c", "")}, 67, true},
		{"one of three", []Feedback{good("a", ""), warning("b", ""), fault("c", "")}, 33, true},
		{"none good", []Feedback{warning("a", ""), fault("b", "")}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FormScore(tt.fb)
			assert.Equal(t, tt.scored, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFirst(t *testing.T) {
	fb := []Feedback{good("a", ""), warning("b", "w1"), warning("c", "w2")}

	f, ok := First(fb, Warning)
	assert.True(t, ok)
	assert.Equal(t, "w1", f.Message)

	_, ok = First(fb, Error)
	assert.False(t, ok)
}
