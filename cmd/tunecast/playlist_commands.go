package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPlaylistCommand(ctx *commandContext) *cobra.Command {
	playlistCmd := &cobra.Command{
		Use:   "playlist",
		Short: "Manage playlists",
	}
	playlistCmd.AddCommand(newPlaylistListCommand(ctx))
	playlistCmd.AddCommand(newPlaylistCreateCommand(ctx))
	playlistCmd.AddCommand(newPlaylistShowCommand(ctx))
	playlistCmd.AddCommand(newPlaylistSetCommand(ctx))
	playlistCmd.AddCommand(newPlaylistDeleteCommand(ctx))
	return playlistCmd
}

func newPlaylistListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List playlists",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			playlists, err := client.listPlaylists()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(playlists) == 0 {
				fmt.Fprintln(out, "No playlists yet")
				return nil
			}

			tbl := newListTable([]string{"ID", "Name", "Tracks", "Created"}, 3)
			for _, playlist := range playlists {
				tbl.addRow(
					playlist.ID,
					truncate(playlist.Name, 32),
					strconv.Itoa(len(playlist.AudioIDs)),
					formatTimestamp(playlist.CreatedAt),
				)
			}
			fmt.Fprintln(out, tbl.render())
			return nil
		},
	}
}

func newPlaylistCreateCommand(ctx *commandContext) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			playlist, err := client.createPlaylist(args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created playlist %s (%s)\n", playlist.Name, playlist.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Playlist description")
	return cmd
}

func newPlaylistShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a playlist with its resolved tracks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			resolved, err := client.resolvePlaylist(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d tracks)\n", resolved.Name, len(resolved.Audios))
			if resolved.Description != "" {
				fmt.Fprintln(out, resolved.Description)
			}
			if len(resolved.Audios) == 0 {
				return nil
			}

			tbl := newListTable([]string{"#", "ID", "Title", "Length"}, 1, 4)
			for i, audio := range resolved.Audios {
				tbl.addRow(
					strconv.Itoa(i+1),
					audio.ID,
					truncate(audio.Title, 48),
					formatDuration(audio.Duration),
				)
			}
			fmt.Fprintln(out, tbl.render())
			return nil
		},
	}
}

func newPlaylistSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> [audio-id ...]",
		Short: "Replace a playlist's tracks with the given audio ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			playlist, err := client.setPlaylistAudios(args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Playlist %s now has %d tracks\n", playlist.Name, len(playlist.AudioIDs))
			return nil
		},
	}
}

func newPlaylistDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			if err := client.deletePlaylist(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted playlist %s\n", args[0])
			return nil
		},
	}
}
