package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityOrdering(t *testing.T) {
	assert.True(t, PriorityHigh.Before(PriorityMedium))
	assert.True(t, PriorityHigh.Before(PriorityLow))
	assert.True(t, PriorityMedium.Before(PriorityLow))

	assert.False(t, PriorityLow.Before(PriorityHigh))
	assert.False(t, PriorityMedium.Before(PriorityMedium))
}

func TestPriorityValid(t *testing.T) {
	assert.True(t, PriorityHigh.Valid())
	assert.True(t, PriorityMedium.Valid())
	assert.True(t, PriorityLow.Valid())

	assert.False(t, Priority(0).Valid())
	assert.False(t, Priority(4).Valid())
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
	}{
		{"high", PriorityHigh},
		{"medium", PriorityMedium},
		{"low", PriorityLow},
	}
	for _, tt := range tests {
		got, err := ParsePriority(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParsePriority("urgent")
	assert.Error(t, err)
}

func TestPriorityTextRoundTrip(t *testing.T) {
	for _, p := range []Priority{PriorityHigh, PriorityMedium, PriorityLow} {
		data, err := p.MarshalText()
		require.NoError(t, err)

		var got Priority
		require.NoError(t, got.UnmarshalText(data))
		assert.Equal(t, p, got)
	}

	_, err := Priority(9).MarshalText()
	assert.Error(t, err)
}
