package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"blogstats/cmd/app"
	"blogstats/cmd/blogstats/output"
	"blogstats/internal/models"
)

var (
	popularWindow time.Duration
	popularMin    int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "User and post statistics",
}

var statsUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Posts, published posts and approved comments received per user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, cfg.QueryTimeout, func(ctx context.Context, c *app.Components) error {
			if jsonOutput {
				stats, err := c.Services.Statistics.UserStatistics(ctx)
				if err != nil {
					return err
				}
				return output.JSON(stats)
			}

			var data [][]string
			err := c.Services.Statistics.EachUserStatistics(ctx, func(userID int64, row models.StatisticsRow) error {
				data = append(data, []string{
					fmt.Sprint(userID),
					row.Name,
					fmt.Sprint(row.TotalPosts),
					fmt.Sprint(row.PublishedPosts),
					fmt.Sprint(row.TotalCommentsReceived),
					fmt.Sprintf("%.2f", row.AvgCommentsPerPost),
				})
				return nil
			})
			if err != nil {
				return err
			}

			if len(data) == 0 {
				output.Warning("No users")
				return nil
			}
			output.Section(fmt.Sprintf("User statistics (%d users)", len(data)))
			output.Table([]string{"ID", "Name", "Posts", "Published", "Comments", "Avg/post"}, data)
			return nil
		})
	},
}

var statsPopularCmd = &cobra.Command{
	Use:   "popular-posts",
	Short: "Recent posts by active authors with enough approved comments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, cfg.QueryTimeout, func(ctx context.Context, c *app.Components) error {
			window := popularWindow
			minApproved := popularMin
			if !cmd.Flags().Changed("min") {
				minApproved = cfg.Report.MinApprovedComments
			}

			rows, err := c.Services.Statistics.RecentPopularPosts(ctx, window, minApproved)
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(rows)
			}
			if len(rows) == 0 {
				output.Warning("No posts with at least %d approved comments", minApproved)
				return nil
			}

			data := make([][]string, 0, len(rows))
			for _, r := range rows {
				data = append(data, []string{r.Title, r.AuthorName, fmt.Sprint(r.ApprovedCommentCount)})
			}
			output.Section("Popular posts")
			output.Table([]string{"Title", "Author", "Approved comments"}, data)
			return nil
		})
	},
}

var statsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Recompute and store the comment and tag counters of every post",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, cfg.Batch.Timeout, func(ctx context.Context, c *app.Components) error {
			result, err := c.Services.Batch.UpdatePostStatistics(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(result)
			}

			output.Success("Updated %d of %d posts (run %s)", result.Updated, result.Processed, result.RunID)
			for _, f := range result.Failures {
				output.Error("Post %d: %v", f.PostID, f.Err)
			}
			if result.Failed > 0 {
				return fmt.Errorf("%d posts failed to update", result.Failed)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(statsUsersCmd, statsPopularCmd, statsUpdateCmd)

	statsPopularCmd.Flags().DurationVar(&popularWindow, "window", 0, "Only posts created within this window (default: REPORT_POPULAR_POSTS_WINDOW)")
	statsPopularCmd.Flags().IntVar(&popularMin, "min", 0, "Minimum approved comments (default: REPORT_MIN_APPROVED_COMMENTS)")
}
