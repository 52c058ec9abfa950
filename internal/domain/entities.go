package domain

import "fmt"

// FavoriteKind selects one of the two favorite sets.
type FavoriteKind string

const (
	KindArt       FavoriteKind = "art"
	KindCharacter FavoriteKind = "character"
)

// ParseFavoriteKind accepts the kind names used on the command line and in URLs.
func ParseFavoriteKind(s string) (FavoriteKind, error) {
	switch s {
	case "art", "arts", "image", "images":
		return KindArt, nil
	case "character", "characters", "char":
		return KindCharacter, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// ImageRecord is a snapshot of a remote image as returned by the random-image
// service. Stored verbatim so favorites render without a network call.
type ImageRecord struct {
	ID          int      `json:"id"`
	FileURL     string   `json:"file_url"`
	FileSize    int      `json:"file_size"`
	Tags        []string `json:"tags"`
	MD5         string   `json:"md5"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Source      string   `json:"source"`
	Author      string   `json:"author"`
	HasChildren bool     `json:"has_children"`
}

// Key returns the identity used for de-duplication.
func (r ImageRecord) Key() int { return r.ID }

// Title returns a display label for lists and fuzzy filtering.
func (r ImageRecord) Title() string {
	if r.Author != "" {
		return fmt.Sprintf("#%d by %s", r.ID, r.Author)
	}
	return fmt.Sprintf("#%d", r.ID)
}

// CharacterImages mirrors the nested image object of the title database.
type CharacterImages struct {
	JPG struct {
		ImageURL string `json:"image_url"`
	} `json:"jpg"`
}

// CharacterRecord is the cached subset of a character.
type CharacterRecord struct {
	MalID  int             `json:"mal_id"`
	Name   string          `json:"name"`
	Images CharacterImages `json:"images"`
}

// Key returns the identity used for de-duplication.
func (r CharacterRecord) Key() int { return r.MalID }

// Title returns a display label for lists and fuzzy filtering.
func (r CharacterRecord) Title() string { return r.Name }

// ImageURL returns the character portrait URL.
func (r CharacterRecord) ImageURL() string { return r.Images.JPG.ImageURL }

// NewCharacterRecord builds a record from its three stored fields.
func NewCharacterRecord(malID int, name, imageURL string) CharacterRecord {
	rec := CharacterRecord{MalID: malID, Name: name}
	rec.Images.JPG.ImageURL = imageURL
	return rec
}

// Settings is the singleton user preference record.
type Settings struct {
	GridColumns  int   `json:"gridColumns"`
	MaxCacheSize int64 `json:"maxCacheSize"` // bytes
}

// SettingsPatch carries a partial update; nil fields are left untouched.
type SettingsPatch struct {
	GridColumns  *int   `json:"gridColumns,omitempty"`
	MaxCacheSize *int64 `json:"maxCacheSize,omitempty"`
}

// Validate checks patch values against their allowed ranges: grid columns
// are 1 or 2 and the cache budget is never negative.
func (p SettingsPatch) Validate() error {
	if p.GridColumns != nil && *p.GridColumns != 1 && *p.GridColumns != 2 {
		return fmt.Errorf("%w: gridColumns must be 1 or 2, got %d", ErrInvalidSettings, *p.GridColumns)
	}
	if p.MaxCacheSize != nil && *p.MaxCacheSize < 0 {
		return fmt.Errorf("%w: maxCacheSize must not be negative", ErrInvalidSettings)
	}
	return nil
}

// Apply merges the patch over s and returns the result.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.GridColumns != nil {
		s.GridColumns = *p.GridColumns
	}
	if p.MaxCacheSize != nil {
		s.MaxCacheSize = *p.MaxCacheSize
	}
	return s
}

// Pagination is the paging envelope of the title database.
type Pagination struct {
	LastVisiblePage int  `json:"last_visible_page"`
	HasNextPage     bool `json:"has_next_page"`
	CurrentPage     int  `json:"current_page"`
}

// Title is an anime or manga entry from the title database.
type Title struct {
	MalID       int      // Title database identifier
	Kind        string   // "anime" or "manga"
	Name        string   // Default (romaji) title
	EnglishName string   // English title when available
	Type        string   // TV, Movie, Manga, Light Novel, ...
	Status      string   // Airing / publishing status
	Episodes    int      // 0 for manga or unknown
	Chapters    int      // 0 for anime or unknown
	Score       float64  // Community score (0-10)
	Year        int      // Start year, 0 when unknown
	Season      string   // winter, spring, summer, fall
	Synopsis    string   // Plot summary
	Genres      []string // Genre names
	ImageURL    string   // Poster URL
	URL         string   // Canonical web URL
}

// DisplayTitle prefers the English title.
func (t Title) DisplayTitle() string {
	if t.EnglishName != "" {
		return t.EnglishName
	}
	return t.Name
}

// Character is a character entry from the title database.
type Character struct {
	MalID     int
	Name      string
	NameKanji string
	Favorites int
	About     string
	ImageURL  string
	URL       string
}

// Record returns the snapshot stored when the character is favorited.
func (c Character) Record() CharacterRecord {
	return NewCharacterRecord(c.MalID, c.Name, c.ImageURL)
}

// Manga is an entry from the manga database.
type Manga struct {
	ID            string
	Slug          string
	Title         string
	Synopsis      string
	Status        string // current, finished, tba, unreleased, upcoming
	Subtype       string // manga, novel, manhua, ...
	ChapterCount  int
	VolumeCount   int
	AverageRating string
	StartDate     string
	PosterURL     string
}

// Category is a manga database genre/category.
type Category struct {
	ID    string
	Title string
	Slug  string
}

// Chapter is a manga chapter listing entry.
type Chapter struct {
	ID        string
	MangaID   string
	Title     string
	Number    int
	Volume    int
	Published string
}
