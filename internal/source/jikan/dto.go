package jikan

import "github.com/mmcdole/akiba/internal/domain"

// listResponse is the envelope of every paginated endpoint
type listResponse[T any] struct {
	Data       []T               `json:"data"`
	Pagination domain.Pagination `json:"pagination"`
}

// singleResponse is the envelope of the /{kind}/{id}/full endpoints
type singleResponse[T any] struct {
	Data T `json:"data"`
}

// Images holds the poster variants of an entry
type Images struct {
	JPG struct {
		ImageURL      string `json:"image_url"`
		LargeImageURL string `json:"large_image_url,omitempty"`
	} `json:"jpg"`
}

// Named is a {mal_id, name} reference (genres, themes, studios)
type Named struct {
	MalID int    `json:"mal_id"`
	Name  string `json:"name"`
}

// DateRange is the aired/published block; only the start year is read
type DateRange struct {
	Prop struct {
		From struct {
			Year *int `json:"year"`
		} `json:"from"`
	} `json:"prop"`
}

// Entry is an anime or manga entry
type Entry struct {
	MalID        int        `json:"mal_id"`
	URL          string     `json:"url"`
	Images       Images     `json:"images"`
	Title        string     `json:"title"`
	TitleEnglish *string    `json:"title_english"`
	Type         *string    `json:"type"`
	Status       *string    `json:"status"`
	Episodes     *int       `json:"episodes,omitempty"`
	Chapters     *int       `json:"chapters,omitempty"`
	Score        *float64   `json:"score"`
	Year         *int       `json:"year,omitempty"`
	Season       *string    `json:"season,omitempty"`
	Synopsis     *string    `json:"synopsis"`
	Genres       []Named    `json:"genres"`
	Aired        *DateRange `json:"aired,omitempty"`
	Published    *DateRange `json:"published,omitempty"`
}

// Character is a character entry
type Character struct {
	MalID     int     `json:"mal_id"`
	URL       string  `json:"url"`
	Images    Images  `json:"images"`
	Name      string  `json:"name"`
	NameKanji *string `json:"name_kanji"`
	Favorites int     `json:"favorites"`
	About     *string `json:"about"`
}
