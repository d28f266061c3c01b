package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	t.Run("ignores absent values", func(t *testing.T) {
		got := Mean([]Float{Some(2), Some(4), Absent, Some(6)})
		assert.Equal(t, Some(4.0), got)
	})

	t.Run("all absent yields absent", func(t *testing.T) {
		got := Mean([]Float{Absent, Absent})
		assert.Equal(t, Absent, got)
	})

	t.Run("empty yields absent", func(t *testing.T) {
		assert.Equal(t, Absent, Mean(nil))
	})

	t.Run("single value", func(t *testing.T) {
		assert.Equal(t, Some(7.0), Mean([]Float{Some(7)}))
	})
}

func TestFloat_Finite(t *testing.T) {
	tests := []struct {
		name string
		in   Float
		want Float
	}{
		{"finite value passes", Some(1.5), Some(1.5)},
		{"absent stays absent", Absent, Absent},
		{"positive infinity coerced", Some(math.Inf(1)), Absent},
		{"negative infinity coerced", Some(math.Inf(-1)), Absent},
		{"NaN coerced", Some(math.NaN()), Absent},
		{"zero is a value, not absence", Some(0), Some(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Finite())
		})
	}
}

func TestFloat_Sub(t *testing.T) {
	assert.Equal(t, Some(1.0), Some(3).Sub(Some(2)))
	assert.Equal(t, Absent, Some(3).Sub(Absent))
	assert.Equal(t, Absent, Absent.Sub(Some(2)))
}

func TestRoundDegree(t *testing.T) {
	assert.Equal(t, -43, RoundDegree(-42.61))
	assert.Equal(t, -42, RoundDegree(-42.39))
	assert.Equal(t, 147, RoundDegree(146.5))
	assert.Equal(t, 0, RoundDegree(0.2))
}
