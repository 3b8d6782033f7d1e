package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon health and tooling availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			health, err := client.health()
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("daemon", statusError, err.Error(), colorize))
				return fmt.Errorf("daemon unreachable")
			}

			fmt.Fprintln(out, renderStatusLine("daemon", statusOK, health.Status, colorize))

			if health.Extractor != "" {
				fmt.Fprintln(out, renderStatusLine("extractor", statusOK, health.Extractor, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("extractor", statusError, "not found", colorize))
			}

			if health.Transcoder {
				fmt.Fprintln(out, renderStatusLine("transcoder", statusOK, "ffmpeg", colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("transcoder", statusError, "not found", colorize))
			}

			kind := statusOK
			message := "ready for conversions"
			if !health.Ready {
				kind = statusWarn
				message = "conversions unavailable"
			}
			fmt.Fprintln(out, renderStatusLine("pipeline", kind, message, colorize))
			return nil
		},
	}
}
