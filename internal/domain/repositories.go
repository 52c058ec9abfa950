package domain

import "context"

// TitleRepository provides access to the anime/manga/character database.
type TitleRepository interface {
	// Top returns the top ranked entries of kind ("anime" or "manga")
	Top(ctx context.Context, kind string, page int) ([]Title, Pagination, error)

	// TopCharacters returns the most favorited characters
	TopCharacters(ctx context.Context, page int) ([]Character, Pagination, error)

	// Full returns a single entry with all details
	Full(ctx context.Context, kind string, id int) (*Title, error)

	// CharacterFull returns a single character with all details
	CharacterFull(ctx context.Context, id int) (*Character, error)

	// Search performs a text query; limit <= 0 uses the API default
	Search(ctx context.Context, kind, query string, page, limit int) ([]Title, Pagination, error)

	// SearchCharacters performs a text query over characters
	SearchCharacters(ctx context.Context, query string, page, limit int) ([]Character, Pagination, error)

	// Season returns the anime of a given broadcast season
	Season(ctx context.Context, year int, season string, page int) ([]Title, Pagination, error)

	// SeasonNow returns the currently airing season
	SeasonNow(ctx context.Context, page int) ([]Title, Pagination, error)

	// ByStatus lists entries of kind filtered by airing/publishing status
	ByStatus(ctx context.Context, kind, status string, limit int) ([]Title, error)
}

// MangaQuery holds the listing filters of the manga database.
type MangaQuery struct {
	Limit      int
	Offset     int
	Text       string
	Categories []string
	Status     string
	Sort       string
}

// MangaRepository provides access to the manga database.
type MangaRepository interface {
	// ListManga returns a page of manga and the total match count
	ListManga(ctx context.Context, q MangaQuery) ([]Manga, int, error)
	GetManga(ctx context.Context, id string) (*Manga, error)
	Categories(ctx context.Context, mangaID string) ([]Category, error)
	Chapters(ctx context.Context, mangaID string) ([]Chapter, error)
}

// ImageRepository provides random images.
type ImageRepository interface {
	Random(ctx context.Context) (*ImageRecord, error)
}
