package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var category string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "convert <url>",
		Short: "Convert a remote video to audio and download the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Converting %s ...\n", args[0])

			result, err := client.convert(args[0], category, outputDir)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Saved %s (%s) in %s\n",
				result.Path, humanize.Bytes(uint64(result.Size)), result.Elapsed.Round(timeRounding))
			if result.ID != "" {
				fmt.Fprintf(out, "Catalog id: %s\n", result.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Category label for the new audio")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory to save the converted file in")
	return cmd
}
