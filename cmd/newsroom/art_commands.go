package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"newsroom/internal/api"
	"newsroom/internal/services/imagegen"
	"newsroom/internal/store"
	"newsroom/internal/textutil"
)

func newArtCommand(ctx *commandContext) *cobra.Command {
	artCmd := &cobra.Command{
		Use:   "art",
		Short: "Inspect generated featured art",
	}
	artCmd.AddCommand(newArtShowCommand(ctx))
	return artCmd
}

func newArtShowCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	var byArticle, asJSON bool
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show art details and optionally save the image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				var art *store.Art
				if byArticle {
					art, err = st.GetArtForArticle(cmd.Context(), id)
				} else {
					art, err = st.GetArt(cmd.Context(), id)
				}
				if err != nil {
					return err
				}
				if art == nil {
					return fmt.Errorf("art %d not found", id)
				}
				if asJSON {
					if err := writeJSON(cmd, api.FromArt(art)); err != nil {
						return err
					}
				} else {
					printArt(cmd, art)
				}
				if !cmd.Flags().Changed("out") {
					return nil
				}
				return saveArt(cmd, art, outPath)
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the image to this file (empty picks a name from the title)")
	cmd.Flags().BoolVar(&byArticle, "article", false, "Treat ID as an article id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func printArt(cmd *cobra.Command, art *store.Art) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Art %d for article %d\n", art.ID, art.ArticleID)
	fmt.Fprintf(out, "  Title:     %s\n", art.Title)
	fmt.Fprintf(out, "  Artist:    %s\n", art.ArtistID)
	fmt.Fprintf(out, "  Medium:    %s\n", art.Medium)
	fmt.Fprintf(out, "  Aesthetic: %s\n", art.Aesthetic)
	fmt.Fprintf(out, "  Style:     %s\n", art.Style)
	if art.Model != "" {
		fmt.Fprintf(out, "  Model:     %s\n", art.Model)
	}
	if api.IsInline(art.ImageURL) {
		fmt.Fprintf(out, "  Image:     inline (%d bytes encoded)\n", len(art.ImageURL))
	} else {
		fmt.Fprintf(out, "  Image:     %s\n", art.ImageURL)
	}
	fmt.Fprintf(out, "  Snippet:   %s\n", art.Snippet)
}

func saveArt(cmd *cobra.Command, art *store.Art, path string) error {
	if !api.IsInline(art.ImageURL) {
		return fmt.Errorf("art %d is hosted at %s; download it from there", art.ID, art.ImageURL)
	}
	data, mimeType, err := imagegen.DecodeDataURL(art.ImageURL)
	if err != nil {
		return err
	}
	if path == "" {
		path = defaultArtFileName(art, mimeType)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", len(data), path)
	return nil
}

func defaultArtFileName(art *store.Art, mimeType string) string {
	ext := ".png"
	switch mimeType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	}
	return "art-" + strconv.FormatInt(art.ID, 10) + "-" + textutil.Slug(art.Title, 48) + ext
}
