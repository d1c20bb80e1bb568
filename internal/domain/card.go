package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Wizard limits shared by every client surface.
const (
	MaxBouquetSize         = 9
	MinRecipientNameLength = 2
	MaxRecipientNameLength = 50
)

// WizardStep is the linear step cursor of the card builder.
type WizardStep int

const (
	StepLanding WizardStep = iota
	StepDetails
	StepBouquet
	StepStudio
	StepPreview
	StepRecipientView
)

var stepNames = map[WizardStep]string{
	StepLanding:       "landing",
	StepDetails:       "details",
	StepBouquet:       "bouquet",
	StepStudio:        "studio",
	StepPreview:       "preview",
	StepRecipientView: "recipientView",
}

// String returns the wire name of the step.
func (s WizardStep) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// CardStatus tracks the draft lifecycle.
type CardStatus string

const (
	CardStatusDraft    CardStatus = "draft"
	CardStatusFinished CardStatus = "finished"
)

var (
	// ErrRecipientNameRequired indicates the recipient name was empty after trimming.
	ErrRecipientNameRequired = errors.New("card: recipient name is required")
	// ErrRecipientNameTooShort indicates the trimmed recipient name is below the minimum length.
	ErrRecipientNameTooShort = errors.New("card: recipient name must be at least 2 characters")
	// ErrRecipientNameTooLong indicates the trimmed recipient name exceeds the maximum length.
	ErrRecipientNameTooLong = errors.New("card: recipient name must be at most 50 characters")
	// ErrUnknownFlower indicates a bouquet toggle referenced an id outside the catalog.
	ErrUnknownFlower = errors.New("card: unknown flower id")
	// ErrBouquetFull indicates the bouquet already holds the maximum number of flowers.
	ErrBouquetFull = errors.New("card: bouquet is full")
	// ErrUnknownMusicTrack indicates a music selection referenced an id outside the catalog.
	ErrUnknownMusicTrack = errors.New("card: unknown music track id")
)

// ValidateRecipientName enforces the recipient name rules after trimming.
func ValidateRecipientName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrRecipientNameRequired
	}
	length := utf8.RuneCountInString(trimmed)
	if length < MinRecipientNameLength {
		return ErrRecipientNameTooShort
	}
	if length > MaxRecipientNameLength {
		return ErrRecipientNameTooLong
	}
	return nil
}

// Card is the wizard's working record: a draft while being built, finished
// once shared. Bouquet keeps insertion order and never holds duplicate ids.
type Card struct {
	ID            string
	OwnerKey      string
	RecipientName string
	Occasion      Occasion
	Language      Language
	Bouquet       []int
	ContentKind   ContentKind
	Content       string
	MusicID       *int
	Step          WizardStep
	Status        CardStatus
	ShareToken    string
	Generation    GenerationState
	CreatedAt     time.Time
	UpdatedAt     time.Time
	FinishedAt    *time.Time
}

// NewCard seeds a draft with the builder defaults, positioned at Details.
func NewCard(id, ownerKey string, lang Language, now time.Time) Card {
	return Card{
		ID:          id,
		OwnerKey:    ownerKey,
		Occasion:    DefaultOccasion,
		Language:    lang,
		ContentKind: ContentKindPoem,
		Step:        StepDetails,
		Status:      CardStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasFlower reports whether the bouquet already contains the flower.
func (c *Card) HasFlower(flowerID int) bool {
	for _, id := range c.Bouquet {
		if id == flowerID {
			return true
		}
	}
	return false
}

// ToggleFlower removes the flower when present and appends it otherwise,
// refusing to grow beyond MaxBouquetSize. Toggling twice restores the
// bouquet to its prior state.
func (c *Card) ToggleFlower(flowerID int) error {
	if _, ok := FlowerByID(flowerID); !ok {
		return ErrUnknownFlower
	}
	for i, id := range c.Bouquet {
		if id == flowerID {
			c.Bouquet = append(c.Bouquet[:i], c.Bouquet[i+1:]...)
			return nil
		}
	}
	if len(c.Bouquet) >= MaxBouquetSize {
		return ErrBouquetFull
	}
	c.Bouquet = append(c.Bouquet, flowerID)
	return nil
}

// SelectMusic sets the music choice; a nil id clears it.
func (c *Card) SelectMusic(trackID *int) error {
	if trackID == nil {
		c.MusicID = nil
		return nil
	}
	if _, ok := MusicTrackByID(*trackID); !ok {
		return ErrUnknownMusicTrack
	}
	value := *trackID
	c.MusicID = &value
	return nil
}

// BouquetNames resolves the bouquet ids into display names for the card's
// language, preserving order. Unknown ids are skipped.
func (c *Card) BouquetNames() []string {
	if len(c.Bouquet) == 0 {
		return nil
	}
	names := make([]string, 0, len(c.Bouquet))
	for _, id := range c.Bouquet {
		if flower, ok := FlowerByID(id); ok {
			names = append(names, flower.DisplayName(c.Language))
		}
	}
	return names
}

// StepReady reports whether the step's required-field invariant holds, i.e.
// whether the wizard may advance past it.
func (c *Card) StepReady(step WizardStep) bool {
	switch step {
	case StepDetails:
		return ValidateRecipientName(c.RecipientName) == nil
	case StepStudio:
		return strings.TrimSpace(c.Content) != ""
	default:
		return true
	}
}
