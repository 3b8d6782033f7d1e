package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newAudiosCommand(ctx *commandContext) *cobra.Command {
	var category string
	var sortBy string
	var order string

	cmd := &cobra.Command{
		Use:   "audios",
		Short: "List converted audio in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			audios, err := client.listAudios(category, sortBy, order)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(audios) == 0 {
				fmt.Fprintln(out, "No audio in the catalog")
				return nil
			}

			tbl := newListTable([]string{"ID", "Title", "Category", "Length", "Size", "Added"}, 4, 5)
			for _, audio := range audios {
				tbl.addRow(
					audio.ID,
					truncate(audio.Title, 48),
					audio.Category,
					formatDuration(audio.Duration),
					humanize.Bytes(uint64(audio.FileSize)),
					formatTimestamp(audio.CreatedAt),
				)
			}
			fmt.Fprintln(out, tbl.render())
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort key: title, duration, fileSize, createdAt")
	cmd.Flags().StringVar(&order, "order", "", "Sort order: asc or desc")
	return cmd
}

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List catalog categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			categories, err := client.listCategories()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(categories) == 0 {
				fmt.Fprintln(out, "No categories yet")
				return nil
			}
			for _, category := range categories {
				fmt.Fprintln(out, category)
			}
			return nil
		},
	}
}

func newAudioCommand(ctx *commandContext) *cobra.Command {
	audioCmd := &cobra.Command{
		Use:   "audio",
		Short: "Manage individual audio entries",
	}
	audioCmd.AddCommand(newAudioSetCategoryCommand(ctx))
	audioCmd.AddCommand(newAudioDeleteCommand(ctx))
	return audioCmd
}

func newAudioSetCategoryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-category <id> <category>",
		Short: "Relabel an audio entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			asset, err := client.patchAudioCategory(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now in %s\n", asset.Title, asset.Category)
			return nil
		},
	}
}

func newAudioDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an audio entry and its file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			if err := client.deleteAudio(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
