package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Emoji markers a kudo can carry.
const (
	EmojiThumbsUp = "THUMBSUP"
	EmojiParty    = "PARTY"
	EmojiHandsUp  = "HANDSUP"
)

// Colors available for a kudo card.
const (
	ColorRed    = "RED"
	ColorGreen  = "GREEN"
	ColorYellow = "YELLOW"
	ColorBlue   = "BLUE"
	ColorWhite  = "WHITE"
)

var (
	emojis = map[string]bool{EmojiThumbsUp: true, EmojiParty: true, EmojiHandsUp: true}
	colors = map[string]bool{ColorRed: true, ColorGreen: true, ColorYellow: true, ColorBlue: true, ColorWhite: true}
)

// Profile is a user's display identity.
type Profile struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	ProfilePicture string    `json:"profilePicture"`
}

// Style describes how a kudo card is drawn.
type Style struct {
	Emoji           string `json:"emoji"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
}

// Normalize fills blank fields with defaults and rejects unknown values.
func (s Style) Normalize() (Style, error) {
	if s.Emoji == "" {
		s.Emoji = EmojiThumbsUp
	}
	if s.BackgroundColor == "" {
		s.BackgroundColor = ColorRed
	}
	if s.TextColor == "" {
		s.TextColor = ColorWhite
	}
	if !emojis[s.Emoji] {
		return s, fmt.Errorf("unknown emoji %q", s.Emoji)
	}
	if !colors[s.BackgroundColor] {
		return s, fmt.Errorf("unknown background color %q", s.BackgroundColor)
	}
	if !colors[s.TextColor] {
		return s, fmt.Errorf("unknown text color %q", s.TextColor)
	}
	return s, nil
}

// Kudo is a single recognition message. Author is always populated;
// Recipient only where the query joins it (recent kudos).
type Kudo struct {
	ID          uuid.UUID `json:"id"`
	Message     string    `json:"message"`
	Style       Style     `json:"style"`
	Author      Profile   `json:"author"`
	RecipientID uuid.UUID `json:"recipientId"`
	Recipient   *Profile  `json:"recipient,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewKudo is the input for creating a kudo.
type NewKudo struct {
	AuthorID    uuid.UUID
	RecipientID uuid.UUID
	Message     string
	Style       Style
}
