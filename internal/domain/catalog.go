package domain

import (
	"strings"

	"golang.org/x/text/language"
)

// Occasion is the closed set of card occasions offered by the builder.
type Occasion string

const (
	OccasionValentine   Occasion = "valentine"
	OccasionNewYear     Occasion = "newyear"
	OccasionAnniversary Occasion = "anniversary"
	OccasionBirthday    Occasion = "birthday"
	OccasionSorry       Occasion = "sorry"
	OccasionJustBecause Occasion = "justBecause"
)

// Occasions lists every valid occasion in display order. The first entry is
// the default for new drafts.
var Occasions = []Occasion{
	OccasionValentine,
	OccasionNewYear,
	OccasionAnniversary,
	OccasionBirthday,
	OccasionSorry,
	OccasionJustBecause,
}

// DefaultOccasion is applied to freshly created drafts.
const DefaultOccasion = OccasionValentine

// ParseOccasion validates the raw value against the closed occasion set.
func ParseOccasion(raw string) (Occasion, bool) {
	candidate := Occasion(strings.TrimSpace(raw))
	for _, occasion := range Occasions {
		if occasion == candidate {
			return occasion, true
		}
	}
	return "", false
}

// DisplayName returns the human readable occasion label for the language.
func (o Occasion) DisplayName(lang Language) string {
	names := occasionNamesEN
	if lang == LanguageTurkish {
		names = occasionNamesTR
	}
	if name, ok := names[o]; ok {
		return name
	}
	return string(o)
}

var occasionNamesEN = map[Occasion]string{
	OccasionValentine:   "Valentine's Day",
	OccasionNewYear:     "New Year",
	OccasionAnniversary: "Anniversary",
	OccasionBirthday:    "Birthday",
	OccasionSorry:       "I'm Sorry",
	OccasionJustBecause: "Just Because",
}

var occasionNamesTR = map[Occasion]string{
	OccasionValentine:   "Sevgililer Günü",
	OccasionNewYear:     "Yılbaşı",
	OccasionAnniversary: "Yıldönümü",
	OccasionBirthday:    "Doğum Günü",
	OccasionSorry:       "Özür Dilerim",
	OccasionJustBecause: "İçimden Geldi",
}

// Language selects the content language for generated card text.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageTurkish Language = "tr"
)

var languageMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Turkish,
})

// ParseLanguage maps the raw tag, which may be a full Accept-Language
// value, onto a supported content language, defaulting to English.
func ParseLanguage(raw string) Language {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return LanguageEnglish
	}
	_, index := language.MatchStrings(languageMatcher, raw)
	if index == 1 {
		return LanguageTurkish
	}
	return LanguageEnglish
}

// ContentKind is the closed set of generated text flavours.
type ContentKind string

const (
	ContentKindMessage ContentKind = "message"
	ContentKindPoem    ContentKind = "poem"
	ContentKindSong    ContentKind = "song"
)

// ParseContentKind rejects unknown kinds at construction time rather than at
// template lookup time.
func ParseContentKind(raw string) (ContentKind, bool) {
	switch ContentKind(strings.TrimSpace(raw)) {
	case ContentKindMessage:
		return ContentKindMessage, true
	case ContentKindPoem:
		return ContentKindPoem, true
	case ContentKindSong:
		return ContentKindSong, true
	default:
		return "", false
	}
}

// Flower describes one entry in the fixed bouquet catalog.
type Flower struct {
	ID    int
	Glyph string
	Name  map[Language]string
}

// DisplayName resolves the flower name for the language, falling back to English.
func (f Flower) DisplayName(lang Language) string {
	if name, ok := f.Name[lang]; ok && name != "" {
		return name
	}
	return f.Name[LanguageEnglish]
}

// Flowers is the fixed bouquet catalog. IDs are stable and referenced from
// persisted drafts.
var Flowers = []Flower{
	{ID: 1, Glyph: "🌹", Name: map[Language]string{LanguageEnglish: "Red Rose", LanguageTurkish: "Kırmızı Gül"}},
	{ID: 2, Glyph: "🌷", Name: map[Language]string{LanguageEnglish: "Tulip", LanguageTurkish: "Lale"}},
	{ID: 3, Glyph: "🌻", Name: map[Language]string{LanguageEnglish: "Sunflower", LanguageTurkish: "Ayçiçeği"}},
	{ID: 4, Glyph: "🌸", Name: map[Language]string{LanguageEnglish: "Cherry Blossom", LanguageTurkish: "Kiraz Çiçeği"}},
	{ID: 5, Glyph: "🌿", Name: map[Language]string{LanguageEnglish: "Eucalyptus", LanguageTurkish: "Okaliptüs"}},
	{ID: 6, Glyph: "💐", Name: map[Language]string{LanguageEnglish: "Wildflower", LanguageTurkish: "Kır Çiçeği"}},
	{ID: 7, Glyph: "🌺", Name: map[Language]string{LanguageEnglish: "Hibiscus", LanguageTurkish: "Hibiskus"}},
	{ID: 8, Glyph: "🪷", Name: map[Language]string{LanguageEnglish: "Lotus", LanguageTurkish: "Lotus"}},
	{ID: 9, Glyph: "🥀", Name: map[Language]string{LanguageEnglish: "Vintage Rose", LanguageTurkish: "Soluk Gül"}},
}

// FlowerByID looks up a catalog flower by its stable identifier.
func FlowerByID(id int) (Flower, bool) {
	for _, flower := range Flowers {
		if flower.ID == id {
			return flower, true
		}
	}
	return Flower{}, false
}

// MusicTrack describes one entry in the fixed background music catalog.
type MusicTrack struct {
	ID    int
	Glyph string
	Name  string
}

// MusicTracks is the fixed background music catalog.
var MusicTracks = []MusicTrack{
	{ID: 1, Glyph: "🎹", Name: "Romantic Piano"},
	{ID: 2, Glyph: "🎧", Name: "Lo-Fi Love"},
	{ID: 3, Glyph: "🎸", Name: "Acoustic Guitar"},
	{ID: 4, Glyph: "🎻", Name: "Violin Solo"},
}

// MusicTrackByID looks up a catalog track by its stable identifier.
func MusicTrackByID(id int) (MusicTrack, bool) {
	for _, track := range MusicTracks {
		if track.ID == id {
			return track, true
		}
	}
	return MusicTrack{}, false
}
