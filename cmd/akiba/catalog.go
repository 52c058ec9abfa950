package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/akiba/internal/domain"
	"github.com/mmcdole/akiba/internal/service"
	"github.com/spf13/cobra"
)

const (
	kindAnime      = "anime"
	kindManga      = "manga"
	kindCharacters = "characters"
)

var topCmd = &cobra.Command{
	Use:       "top <anime|manga|characters>",
	Short:     "Show the top ranked titles or characters",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{kindAnime, kindManga, kindCharacters},
	RunE: func(cmd *cobra.Command, args []string) error {
		pages, _ := cmd.Flags().GetInt("pages")
		status, _ := cmd.Flags().GetString("status")
		catalog := current.catalog()

		if args[0] == kindCharacters {
			chars, err := catalog.TopCharactersPager().Collect(cmd.Context(), pages)
			if len(chars) == 0 && err != nil {
				return err
			}
			printCharacters(chars)
			return nil
		}

		if status != "" {
			titles, err := catalog.ByStatus(cmd.Context(), args[0], status, 25)
			if err != nil {
				return err
			}
			printTitles(titles)
			return nil
		}

		titles, err := catalog.TopPager(args[0]).Collect(cmd.Context(), pages)
		if len(titles) == 0 && err != nil {
			return err
		}
		printTitles(titles)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:       "search <anime|manga|characters> <query>",
	Short:     "Search the title database",
	Args:      cobra.MinimumNArgs(2),
	ValidArgs: []string{kindAnime, kindManga, kindCharacters},
	RunE: func(cmd *cobra.Command, args []string) error {
		pages, _ := cmd.Flags().GetInt("pages")
		query := strings.Join(args[1:], " ")
		catalog := current.catalog()

		switch args[0] {
		case kindCharacters:
			chars, err := catalog.SearchCharacters(cmd.Context(), query, pages)
			if err != nil && len(chars) == 0 {
				return fmt.Errorf("search failed: %w", err)
			}
			printCharacters(chars)
			printIncomplete(err)
		case kindAnime, kindManga:
			titles, err := catalog.Search(cmd.Context(), args[0], query, pages)
			if err != nil && len(titles) == 0 {
				return fmt.Errorf("search failed: %w", err)
			}
			printTitles(titles)
			printIncomplete(err)
		default:
			return fmt.Errorf("%w: %q", domain.ErrUnknownKind, args[0])
		}
		return nil
	},
}

var seasonCmd = &cobra.Command{
	Use:   "season [year season]",
	Short: "List the anime of a broadcast season (default: the current one)",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or <year> <season>")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		pages, _ := cmd.Flags().GetInt("pages")

		year, season := 0, ""
		if len(args) == 2 {
			var err error
			year, err = strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			season = strings.ToLower(args[1])
		}

		titles, err := current.catalog().SeasonPager(year, season).Collect(cmd.Context(), pages)
		if len(titles) == 0 && err != nil {
			return err
		}
		printTitles(titles)
		return nil
	},
}

var mangaCmd = &cobra.Command{
	Use:   "manga",
	Short: "Browse the manga database",
}

var mangaSearchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "List manga, optionally filtered by text, category or status",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := domain.MangaQuery{Text: strings.Join(args, " ")}
		q.Categories, _ = cmd.Flags().GetStringSlice("category")
		q.Status, _ = cmd.Flags().GetString("status")
		q.Sort, _ = cmd.Flags().GetString("sort")
		q.Limit, _ = cmd.Flags().GetInt("limit")
		q.Offset, _ = cmd.Flags().GetInt("offset")

		manga, total, err := current.catalog().SearchManga(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if len(manga) == 0 {
			printEmpty("manga found")
			return nil
		}

		fmt.Printf("\n📚 %d of %d manga\n", len(manga), total)
		t := newTable("ID", "Title", "Type", "Status", "Chapters", "Rating")
		for _, m := range manga {
			t.Row(m.ID, truncateString(m.Title, 50), m.Subtype, m.Status, countOrDash(m.ChapterCount), m.AverageRating)
		}
		fmt.Println(t)
		return nil
	},
}

var mangaShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a manga with its categories and chapters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := current.catalog().MangaDetails(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printMangaDetails(d)
		return nil
	},
}

func init() {
	topCmd.Flags().Int("pages", 1, "number of pages to fetch")
	topCmd.Flags().String("status", "", "filter by status (airing, complete, upcoming, publishing)")
	searchCmd.Flags().Int("pages", 2, "number of result pages to merge before ranking")
	seasonCmd.Flags().Int("pages", 1, "number of pages to fetch")

	mangaSearchCmd.Flags().StringSlice("category", nil, "category slug, repeatable")
	mangaSearchCmd.Flags().String("status", "", "current, finished, tba, unreleased or upcoming")
	mangaSearchCmd.Flags().String("sort", "-userCount", "sort field, prefix with - for descending")
	mangaSearchCmd.Flags().Int("limit", 20, "page size (max 20)")
	mangaSearchCmd.Flags().Int("offset", 0, "result offset")

	mangaCmd.AddCommand(mangaSearchCmd)
	mangaCmd.AddCommand(mangaShowCmd)
}

func printTitles(titles []domain.Title) {
	if len(titles) == 0 {
		printEmpty("results")
		return
	}
	t := newTable("#", "ID", "Title", "Type", "Year", "Score", "Status")
	for i, title := range titles {
		t.Row(
			strconv.Itoa(i+1),
			strconv.Itoa(title.MalID),
			truncateString(title.DisplayTitle(), 48),
			title.Type,
			countOrDash(title.Year),
			fmt.Sprintf("%.2f", title.Score),
			title.Status,
		)
	}
	fmt.Println(t)
}

func printCharacters(chars []domain.Character) {
	if len(chars) == 0 {
		printEmpty("results")
		return
	}
	t := newTable("", "#", "ID", "Name", "Favorites")
	for i, c := range chars {
		mark := " "
		if current.ledger.IsFavorite(domain.KindCharacter, c.MalID) {
			mark = "★"
		}
		t.Row(mark, strconv.Itoa(i+1), strconv.Itoa(c.MalID), truncateString(c.Name, 40), strconv.Itoa(c.Favorites))
	}
	fmt.Println(t)
}

func printMangaDetails(d *service.MangaDetails) {
	m := d.Manga
	fmt.Printf("\n📖 %s\n", headerStyle.Render(m.Title))
	fmt.Println(dimStyle.Render(fmt.Sprintf("%s · %s · started %s · rating %s", m.Subtype, m.Status, m.StartDate, m.AverageRating)))

	if len(d.Categories) > 0 {
		names := make([]string, len(d.Categories))
		for i, c := range d.Categories {
			names[i] = c.Title
		}
		fmt.Println("Categories: " + strings.Join(names, ", "))
	}
	if m.Synopsis != "" {
		fmt.Println()
		fmt.Println(truncateString(m.Synopsis, 600))
	}

	if len(d.Chapters) == 0 {
		return
	}
	fmt.Println()
	t := newTable("Vol", "#", "Title", "Published")
	for _, ch := range d.Chapters {
		t.Row(countOrDash(ch.Volume), strconv.Itoa(ch.Number), truncateString(ch.Title, 50), ch.Published)
	}
	fmt.Println(t)
}

func countOrDash(n int) string {
	if n <= 0 {
		return "-"
	}
	return strconv.Itoa(n)
}
