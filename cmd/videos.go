package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"video-library/config"
	"video-library/repository"
	"video-library/service"
)

func videos(config *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "videos",
		Short: "inspect and manage stored videos",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "list stored videos, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(config, func(ctx context.Context, store repository.ObjectStore) error {
					return listVideos(ctx, cmd.OutOrStdout(), store)
				})
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "delete every object stored for a video",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(config, func(ctx context.Context, store repository.ObjectStore) error {
					return deleteVideo(ctx, cmd.OutOrStdout(), store, args[0])
				})
			},
		},
	)
	return cmd
}

func withStore(cfg *config.Config, fn func(ctx context.Context, store repository.ObjectStore) error) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	store, closeStore, err := repository.NewFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to close object store")
		}
	}()
	return fn(ctx, store)
}

func listVideos(ctx context.Context, w io.Writer, store repository.ObjectStore) error {
	list, err := service.NewCatalogService(store, nil).List(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tTHUMBNAIL\tTITLE")
	for _, v := range list {
		created := "-"
		if !v.CreatedAt.IsZero() {
			created = v.CreatedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", v.ID, created, v.HasThumbnail(), v.Title)
	}
	return tw.Flush()
}

func deleteVideo(ctx context.Context, w io.Writer, store repository.ObjectStore, id string) error {
	if _, err := service.NewCatalogService(store, nil).Get(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return fmt.Errorf("video %q not found", id)
		}
		return err
	}

	prefix := strings.TrimSuffix(id, "/") + "/"
	n, err := repository.DeleteFolder(ctx, store, prefix)
	fmt.Fprintf(w, "deleted %d objects of %s\n", n, id)
	return err
}
