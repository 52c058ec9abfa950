package jikan

import "github.com/mmcdole/akiba/internal/domain"

// MapEntries converts API entries to domain titles
func MapEntries(entries []Entry, kind string) []domain.Title {
	titles := make([]domain.Title, 0, len(entries))
	for _, e := range entries {
		titles = append(titles, mapEntry(e, kind))
	}
	return titles
}

func mapEntry(e Entry, kind string) domain.Title {
	t := domain.Title{
		MalID:       e.MalID,
		Kind:        kind,
		Name:        e.Title,
		EnglishName: str(e.TitleEnglish),
		Type:        str(e.Type),
		Status:      str(e.Status),
		Episodes:    num(e.Episodes),
		Chapters:    num(e.Chapters),
		Year:        num(e.Year),
		Season:      str(e.Season),
		Synopsis:    str(e.Synopsis),
		ImageURL:    e.Images.JPG.ImageURL,
		URL:         e.URL,
	}
	if e.Score != nil {
		t.Score = *e.Score
	}
	if e.Images.JPG.LargeImageURL != "" {
		t.ImageURL = e.Images.JPG.LargeImageURL
	}

	// Manga and older anime carry the start year only in the date block
	if t.Year == 0 {
		switch {
		case e.Aired != nil:
			t.Year = num(e.Aired.Prop.From.Year)
		case e.Published != nil:
			t.Year = num(e.Published.Prop.From.Year)
		}
	}

	for _, g := range e.Genres {
		t.Genres = append(t.Genres, g.Name)
	}
	return t
}

// MapCharacters converts API characters to domain characters
func MapCharacters(chars []Character) []domain.Character {
	out := make([]domain.Character, 0, len(chars))
	for _, c := range chars {
		out = append(out, mapCharacter(c))
	}
	return out
}

func mapCharacter(c Character) domain.Character {
	return domain.Character{
		MalID:     c.MalID,
		Name:      c.Name,
		NameKanji: str(c.NameKanji),
		Favorites: c.Favorites,
		About:     str(c.About),
		ImageURL:  c.Images.JPG.ImageURL,
		URL:       c.URL,
	}
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
