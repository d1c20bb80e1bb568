package domain

// GalleryItem is a read-only community showcase card. Items are static seed
// content with no lifecycle beyond their like counter.
type GalleryItem struct {
	ID            string
	RecipientName string
	Occasion      Occasion
	Bouquet       []int
	Content       string
	MusicID       *int
	Likes         int
}

// GallerySeed is served when the gallery collection has not been populated
// yet, mirroring the showcase the reference clients ship with.
var GallerySeed = []GalleryItem{
	{
		ID:            "seed-valentine",
		RecipientName: "Sarah",
		Occasion:      OccasionValentine,
		Bouquet:       []int{1, 4, 5},
		Content:       "Roses are red, violets are blue...",
		MusicID:       intPtr(1),
		Likes:         842,
	},
	{
		ID:            "seed-anniversary",
		RecipientName: "Michael",
		Occasion:      OccasionAnniversary,
		Bouquet:       []int{3, 6},
		Content:       "Three years of joy, a lifetime to go...",
		MusicID:       intPtr(3),
		Likes:         621,
	},
}

func intPtr(v int) *int { return &v }
