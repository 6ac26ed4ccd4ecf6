package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyleNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      Style
		want    Style
		wantErr bool
	}{
		{"defaults", Style{}, Style{EmojiThumbsUp, ColorRed, ColorWhite}, false},
		{"explicit", Style{EmojiParty, ColorBlue, ColorYellow}, Style{EmojiParty, ColorBlue, ColorYellow}, false},
		{"partial", Style{Emoji: EmojiHandsUp}, Style{EmojiHandsUp, ColorRed, ColorWhite}, false},
		{"bad emoji", Style{Emoji: "SMILE"}, Style{}, true},
		{"bad background", Style{BackgroundColor: "PINK"}, Style{}, true},
		{"bad text color", Style{TextColor: "black"}, Style{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Normalize()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
