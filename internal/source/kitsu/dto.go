package kitsu

// Resource is a JSON:API resource object
type Resource[A any] struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes A      `json:"attributes"`
}

// Meta carries the total match count of a listing
type Meta struct {
	Count int `json:"count"`
}

type listDocument[A any] struct {
	Data []Resource[A] `json:"data"`
	Meta Meta          `json:"meta"`
}

type singleDocument[A any] struct {
	Data Resource[A] `json:"data"`
}

// ImageSet holds the size variants of a poster
type ImageSet struct {
	Tiny     string `json:"tiny,omitempty"`
	Small    string `json:"small,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Large    string `json:"large,omitempty"`
	Original string `json:"original,omitempty"`
}

// MangaAttributes are the attributes of a manga resource
type MangaAttributes struct {
	Slug           string            `json:"slug"`
	CanonicalTitle string            `json:"canonicalTitle"`
	Titles         map[string]string `json:"titles"`
	Synopsis       string            `json:"synopsis"`
	Status         string            `json:"status"`
	Subtype        string            `json:"subtype"`
	ChapterCount   *int              `json:"chapterCount"`
	VolumeCount    *int              `json:"volumeCount"`
	AverageRating  *string           `json:"averageRating"`
	StartDate      *string           `json:"startDate"`
	PosterImage    *ImageSet         `json:"posterImage"`
}

// CategoryAttributes are the attributes of a category resource
type CategoryAttributes struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// ChapterAttributes are the attributes of a chapter resource
type ChapterAttributes struct {
	CanonicalTitle *string `json:"canonicalTitle"`
	Number         int     `json:"number"`
	VolumeNumber   *int    `json:"volumeNumber"`
	Published      *string `json:"published"`
}
