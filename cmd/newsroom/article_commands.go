package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"newsroom/internal/api"
	"newsroom/internal/articles"
	"newsroom/internal/pipeline"
	"newsroom/internal/publish"
	"newsroom/internal/store"
)

func newArticlesCommand(ctx *commandContext) *cobra.Command {
	articlesCmd := &cobra.Command{
		Use:     "articles",
		Aliases: []string{"article"},
		Short:   "Browse, create and edit articles",
	}

	articlesCmd.AddCommand(newArticlesListCommand(ctx))
	articlesCmd.AddCommand(newArticlesShowCommand(ctx))
	articlesCmd.AddCommand(newArticlesCreateCommand(ctx))
	articlesCmd.AddCommand(newArticlesUpdateCommand(ctx))
	articlesCmd.AddCommand(newArticlesDeleteCommand(ctx))

	return articlesCmd
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

func newArticlesListCommand(ctx *commandContext) *cobra.Command {
	var filter store.ArticleFilter
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List articles, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				items, err := api.NewArticleService(st).List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, api.ArticleListResponse{Items: items})
				}
				rows := make([][]string, 0, len(items))
				for _, a := range items {
					rows = append(rows, []string{
						strconv.FormatInt(a.ID, 10),
						a.Title,
						a.AuthorID,
						a.Tone,
						a.ArticleType,
						a.VideoID,
						yesNo(a.BulletPoints != ""),
						yesNo(a.Published),
					})
				}
				printTable(cmd, []string{"ID", "Title", "Author", "Tone", "Type", "Video", "Summary", "Published"}, rows,
					[]columnAlignment{alignRight}, "No articles")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&filter.AuthorID, "author", "", "Filter by journalist id")
	cmd.Flags().StringVar(&filter.Tone, "tone", "", "Filter by tone")
	cmd.Flags().StringVar(&filter.ArticleType, "type", "", "Filter by article type")
	cmd.Flags().BoolVar(&filter.WithoutSummary, "without-summary", false, "Only articles missing bullet points")
	cmd.Flags().BoolVar(&filter.WithoutArt, "without-art", false, "Only articles missing art")
	cmd.Flags().BoolVar(&filter.Unpublished, "unpublished", false, "Only articles not yet published")
	cmd.Flags().IntVarP(&filter.Limit, "limit", "n", 50, "Maximum articles to list")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "Skip this many articles")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newArticlesShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON, asMarkdown, asHTML bool
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if asMarkdown && asHTML {
				return errors.New("specify only one of --markdown or --html")
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				view, err := api.NewArticleService(st).Describe(cmd.Context(), id)
				if err != nil {
					return err
				}
				if view == nil {
					return fmt.Errorf("article %d not found", id)
				}
				if asJSON {
					return writeJSON(cmd, api.ArticleResponse{Item: *view})
				}
				body, err := renderBody(view.Content, asMarkdown, asHTML)
				if err != nil {
					return err
				}
				printArticle(cmd, *view, body)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&asMarkdown, "markdown", false, "Render the body as Markdown")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Print the stored HTML")
	return cmd
}

func renderBody(content string, asMarkdown, asHTML bool) (string, error) {
	switch {
	case asHTML:
		return content, nil
	case asMarkdown:
		return publish.Markdown(content)
	default:
		return articles.PlainText(content)
	}
}

func printArticle(cmd *cobra.Command, a api.Article, body string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s\n\n", a.Title)
	fmt.Fprintf(out, "ID:        %d\n", a.ID)
	fmt.Fprintf(out, "Author:    %s\n", a.AuthorID)
	fmt.Fprintf(out, "Tone:      %s\n", a.Tone)
	fmt.Fprintf(out, "Type:      %s\n", a.ArticleType)
	if a.VideoID != "" {
		fmt.Fprintf(out, "Video:     %s\n", a.VideoID)
	}
	if a.CreatedAt != "" {
		fmt.Fprintf(out, "Created:   %s\n", a.CreatedAt)
	}
	if a.Published {
		fmt.Fprintf(out, "Published: %s\n", a.PublishedRef)
	}
	if a.Art != nil {
		fmt.Fprintf(out, "Art:       #%d %s (%s, %s, %s)\n", a.Art.ID, a.Art.Title, a.Art.Medium, a.Art.Aesthetic, a.Art.Style)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, body)
	if a.BulletPoints != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Summary:")
		fmt.Fprintln(out, a.BulletPoints)
	}
}

func newArticlesCreateCommand(ctx *commandContext) *cobra.Command {
	var req articles.AdHocRequest
	var contextFile string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Write a standalone article from a brief",
		RunE: func(cmd *cobra.Command, args []string) error {
			if contextFile != "" {
				if req.Context != "" {
					return errors.New("specify only one of --context or --context-file")
				}
				data, err := os.ReadFile(contextFile)
				if err != nil {
					return fmt.Errorf("read context file: %w", err)
				}
				req.Context = string(data)
			}
			return ctx.withPipeline(func(o *pipeline.Orchestrator) error {
				cfg := ctx.configValue()
				if req.JournalistID == "" {
					req.JournalistID = cfg.Creators.Journalist
				}
				if req.Tone == "" {
					req.Tone = cfg.Creators.Tone
				}
				if req.ArticleType == "" {
					req.ArticleType = cfg.Creators.ArticleType
				}
				article, err := o.Articles().CreateAdHoc(cmd.Context(), req)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, api.ArticleResponse{Item: api.FromArticle(article, true)})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created article %d: %s\n", article.ID, article.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Context, "context", "", "Background material for the article")
	cmd.Flags().StringVar(&contextFile, "context-file", "", "Read the background material from a file")
	cmd.Flags().StringVar(&req.Prompt, "prompt", "", "What the article should cover")
	cmd.Flags().StringVar(&req.JournalistID, "journalist", "", "Journalist id")
	cmd.Flags().StringVar(&req.Tone, "tone", "", "Article tone")
	cmd.Flags().StringVar(&req.ArticleType, "type", "", "Article type")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the created article as JSON")
	return cmd
}

func newArticlesUpdateCommand(ctx *commandContext) *cobra.Command {
	var title, tone, articleType string
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change an article's title, tone or type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var edit articles.Edit
			flags := cmd.Flags()
			if flags.Changed("title") {
				edit.Title = &title
			}
			if flags.Changed("tone") {
				edit.Tone = &tone
			}
			if flags.Changed("type") {
				edit.ArticleType = &articleType
			}
			if edit.Title == nil && edit.Tone == nil && edit.ArticleType == nil {
				return errors.New("nothing to update; pass --title, --tone or --type")
			}
			return ctx.withPipeline(func(o *pipeline.Orchestrator) error {
				article, err := o.Articles().Update(cmd.Context(), id, edit)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated article %d (%s, %s, %s) at %s\n",
					article.ID, article.Title, article.Tone, article.ArticleType,
					article.UpdatedAt.Local().Format(time.DateTime))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&tone, "tone", "", "New tone")
	cmd.Flags().StringVar(&articleType, "type", "", "New article type")
	return cmd
}

func newArticlesDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an article and its art",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				removed, err := st.DeleteArticle(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("article %d not found", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted article %d\n", id)
				return nil
			})
		},
	}
}
