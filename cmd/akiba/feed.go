package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/mmcdole/akiba/internal/domain"
	"github.com/spf13/cobra"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Pull and inspect the random art feed",
}

var feedPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch random images into the feed window",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("count")

		res, err := current.feed().Pull(cmd.Context(), n)
		if res == nil {
			return err
		}
		if err != nil {
			fmt.Println(errorStyle.Render("Some images could not be fetched: " + err.Error()))
		}

		fmt.Printf("\n🎨 Pulled %d images (window holds %d)\n", len(res.Fetched), len(res.Window))
		printImages(res.Fetched)
		return nil
	},
}

var feedListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the stored feed window",
	RunE: func(cmd *cobra.Command, args []string) error {
		window, err := current.feed().Window()
		if err != nil {
			return err
		}
		if len(window) == 0 {
			printEmpty("images in the feed, run 'akiba feed pull'")
			return nil
		}
		fmt.Printf("\n🎨 Feed (%d images)\n", len(window))
		printImages(window)
		return nil
	},
}

var feedTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the tags seen in the feed, most frequent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, err := current.feed().Tags(cmd.Context())
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			printEmpty("tags")
			return nil
		}
		for _, tag := range tags {
			fmt.Println(tag)
		}
		return nil
	},
}

func init() {
	feedPullCmd.Flags().IntP("count", "n", 10, "number of images to fetch")

	feedCmd.AddCommand(feedPullCmd)
	feedCmd.AddCommand(feedListCmd)
	feedCmd.AddCommand(feedTagsCmd)
}

func printImages(records []domain.ImageRecord) {
	t := newTable("", "ID", "Author", "Size", "Bytes", "Tags")
	for _, r := range records {
		mark := " "
		if current.ledger.IsFavorite(domain.KindArt, r.ID) {
			mark = "★"
		}
		t.Row(
			mark,
			strconv.Itoa(r.ID),
			truncateString(r.Author, 20),
			fmt.Sprintf("%dx%d", r.Width, r.Height),
			humanize.Bytes(uint64(max(r.FileSize, 0))),
			truncateString(joinTags(r.Tags), 40),
		)
	}
	fmt.Println(t)
}
