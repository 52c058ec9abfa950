package kitsu

import "github.com/mmcdole/akiba/internal/domain"

// ToManga converts a manga resource to the domain type
func ToManga(r Resource[MangaAttributes]) domain.Manga {
	a := r.Attributes
	m := domain.Manga{
		ID:            r.ID,
		Slug:          a.Slug,
		Title:         a.CanonicalTitle,
		Synopsis:      a.Synopsis,
		Status:        a.Status,
		Subtype:       a.Subtype,
		ChapterCount:  num(a.ChapterCount),
		VolumeCount:   num(a.VolumeCount),
		AverageRating: str(a.AverageRating),
		StartDate:     str(a.StartDate),
	}
	if m.Title == "" {
		m.Title = a.Titles["en"]
	}
	if p := a.PosterImage; p != nil {
		m.PosterURL = firstNonEmpty(p.Large, p.Medium, p.Original, p.Small)
	}
	return m
}

// ToCategory converts a category resource to the domain type
func ToCategory(r Resource[CategoryAttributes]) domain.Category {
	return domain.Category{ID: r.ID, Title: r.Attributes.Title, Slug: r.Attributes.Slug}
}

// ToChapter converts a chapter resource to the domain type
func ToChapter(r Resource[ChapterAttributes], mangaID string) domain.Chapter {
	return domain.Chapter{
		ID:        r.ID,
		MangaID:   mangaID,
		Title:     str(r.Attributes.CanonicalTitle),
		Number:    r.Attributes.Number,
		Volume:    num(r.Attributes.VolumeNumber),
		Published: str(r.Attributes.Published),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func num(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
