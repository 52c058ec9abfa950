package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mmcdole/akiba/internal/domain"
	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "List and toggle favorite art and characters",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list [art|character]",
	Short: "List favorites with their cached details",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds := []domain.FavoriteKind{domain.KindArt, domain.KindCharacter}
		if len(args) == 1 {
			kind, err := domain.ParseFavoriteKind(args[0])
			if err != nil {
				return err
			}
			kinds = []domain.FavoriteKind{kind}
		}

		for _, kind := range kinds {
			if err := printFavorites(kind); err != nil {
				return err
			}
		}
		return nil
	},
}

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle <art|character> <id>",
	Short: "Add or remove a favorite",
	Long: "Add or remove a favorite. When adding, the record is fetched from the " +
		"title database (characters) so it can be shown offline later.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := domain.ParseFavoriteKind(args[0])
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[1])
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid id %q", args[1])
		}

		added, err := toggleFavorite(cmd.Context(), kind, id)
		if err != nil {
			return err
		}

		if added {
			fmt.Println(successStyle.Render(fmt.Sprintf("★ Added %s #%d to favorites", kind, id)))
		} else {
			fmt.Println(dimStyle.Render(fmt.Sprintf("☆ Removed %s #%d from favorites", kind, id)))
		}
		return nil
	},
}

func init() {
	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesToggleCmd)
}

// toggleFavorite flips a favorite, attaching a snapshot when one can be found
func toggleFavorite(ctx context.Context, kind domain.FavoriteKind, id int) (bool, error) {
	if current.ledger.IsFavorite(kind, id) {
		return current.ledger.Toggle(kind, id)
	}

	switch kind {
	case domain.KindCharacter:
		var rec *domain.CharacterRecord
		ch, err := current.catalog().Character(ctx, id)
		if err != nil {
			current.logger.Warn("character lookup failed, saving id only", "id", id, "error", err)
		} else {
			r := ch.Record()
			rec = &r
		}
		return current.ledger.ToggleCharacter(id, rec)

	default:
		// Art can only be snapshotted from the feed window
		var rec *domain.ImageRecord
		window, err := current.cache.Feed()
		if err != nil {
			return false, err
		}
		for i := range window {
			if window[i].ID == id {
				rec = &window[i]
				break
			}
		}
		return current.ledger.ToggleArt(id, rec)
	}
}

func printFavorites(kind domain.FavoriteKind) error {
	ids := current.ledger.IDs(kind)

	switch kind {
	case domain.KindArt:
		records, err := current.ledger.ArtRecords()
		if err != nil {
			return err
		}
		fmt.Printf("\n★ Art (%d favorites, %d cached)\n", len(ids), len(records))
		if len(records) == 0 {
			printEmpty("cached art")
			return nil
		}
		t := newTable("ID", "Author", "Size", "Tags", "URL")
		for _, r := range records {
			t.Row(
				strconv.Itoa(r.ID),
				truncateString(r.Author, 20),
				fmt.Sprintf("%dx%d", r.Width, r.Height),
				truncateString(joinTags(r.Tags), 30),
				r.FileURL,
			)
		}
		fmt.Println(t)

	case domain.KindCharacter:
		records, err := current.ledger.CharacterRecords()
		if err != nil {
			return err
		}
		fmt.Printf("\n★ Characters (%d favorites, %d cached)\n", len(ids), len(records))
		if len(records) == 0 {
			printEmpty("cached characters")
			return nil
		}
		t := newTable("ID", "Name", "Image")
		for _, r := range records {
			t.Row(strconv.Itoa(r.MalID), truncateString(r.Name, 40), r.ImageURL())
		}
		fmt.Println(t)
	}
	return nil
}
