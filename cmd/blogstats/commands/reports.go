package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"blogstats/cmd/app"
	"blogstats/cmd/blogstats/output"
	"blogstats/internal/models"
)

var refreshSidebar bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the most recent published posts with their comment and tag summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, cfg.QueryTimeout, func(ctx context.Context, c *app.Components) error {
			rows, err := c.Services.Dashboard.BlogDashboard(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(rows)
			}
			printDashboard(rows)
			return nil
		})
	},
}

var sidebarCmd = &cobra.Command{
	Use:   "sidebar",
	Short: "Show popular tags, recent posts and the active user count",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, cfg.QueryTimeout, func(ctx context.Context, c *app.Components) error {
			if refreshSidebar {
				if err := c.Services.Sidebar.InvalidateSidebar(ctx); err != nil {
					output.Warning("Failed to invalidate sidebar cache: %v", err)
				}
			}

			payload, err := c.Services.Sidebar.SidebarData(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(payload)
			}
			printSidebar(payload)
			return nil
		})
	},
}

var recentCommentsCmd = &cobra.Command{
	Use:   "recent-comments",
	Short: "List published posts with their newest approved comments from active users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, cfg.QueryTimeout, func(ctx context.Context, c *app.Components) error {
			posts, err := c.Services.Posts.PostsWithRecentComments(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(posts)
			}
			printRecentComments(posts)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd, sidebarCmd, recentCommentsCmd)

	sidebarCmd.Flags().BoolVar(&refreshSidebar, "refresh", false, "Drop the cached sidebar before reading it")
}

func printDashboard(rows []models.DashboardRow) {
	if len(rows) == 0 {
		output.Warning("No published posts")
		return
	}

	output.Section(fmt.Sprintf("Dashboard (%d posts)", len(rows)))
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			r.Title,
			r.Author,
			r.Category,
			fmt.Sprint(r.CommentCount),
			strings.Join(r.TagNames, ", "),
			output.Optional(r.LatestComment),
		})
	}
	output.Table([]string{"Title", "Author", "Category", "Comments", "Tags", "Latest comment"}, data)
}

func printSidebar(p *models.SidebarPayload) {
	output.Section("Sidebar")

	if len(p.PopularTags) == 0 {
		output.Muted("No tags yet")
	} else {
		output.Info("Popular tags: %s", strings.Join(p.PopularTags, ", "))
	}

	if len(p.RecentPosts) > 0 {
		data := make([][]string, 0, len(p.RecentPosts))
		for _, rp := range p.RecentPosts {
			data = append(data, []string{rp.Title, rp.Author})
		}
		output.Table([]string{"Recent post", "Author"}, data)
	}

	output.Info("Active users: %d", p.ActiveUsersCount)
}

func printRecentComments(posts []models.PostWithRecentComments) {
	if len(posts) == 0 {
		output.Warning("No published posts")
		return
	}

	output.Section(fmt.Sprintf("Recent comments (%d posts)", len(posts)))
	data := make([][]string, 0, len(posts))
	for _, p := range posts {
		if len(p.RecentComments) == 0 {
			data = append(data, []string{p.Title, "", "", ""})
			continue
		}
		for i, rc := range p.RecentComments {
			title := ""
			if i == 0 {
				title = p.Title
			}
			data = append(data, []string{title, rc.AuthorName, rc.Content, rc.CreatedAt.Format("2006-01-02 15:04")})
		}
	}
	output.Table([]string{"Post", "Author", "Comment", "Posted"}, data)
}
