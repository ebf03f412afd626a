package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"podbook/internal/application/wizard"
	"podbook/internal/domain/entity"
	"podbook/internal/infrastructure/podbookapi"
	"podbook/internal/infrastructure/rss"
)

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "episodes <feed-url>",
		Short: "List the episodes of a podcast feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var source wizard.EpisodeSource
			if remote {
				source = podbookapi.NewClient(&cfg.Clients.Podbook)
			} else {
				source = rss.NewService(rss.NewFetcher(&cfg.RSS), nil, 0)
			}

			episodes, err := source.FetchEpisodes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(episodes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No episodes found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderEpisodes(episodes))
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Resolve the feed through the Podbook API instead of fetching it directly")
	return cmd
}

func renderEpisodes(episodes []entity.RSSEpisode) string {
	rows := make([][]string, 0, len(episodes))
	for i, ep := range episodes {
		rows = append(rows, []string{strconv.Itoa(i), ep.Title, ep.PublishedAt, ep.DurationLabel})
	}
	return renderTable([]column{right("#"), left("Title"), left("Published"), right("Duration")}, rows)
}
