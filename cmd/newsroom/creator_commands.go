package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"newsroom/internal/contextstore"
	"newsroom/internal/creators"
)

func newCreatorsCommand(ctx *commandContext) *cobra.Command {
	creatorsCmd := &cobra.Command{
		Use:     "creators",
		Aliases: []string{"creator"},
		Short:   "Show journalists, artists and prompt templates",
	}

	creatorsCmd.AddCommand(newCreatorsListCommand(ctx))
	creatorsCmd.AddCommand(newCreatorsShowCommand(ctx))
	creatorsCmd.AddCommand(newCreatorsTemplatesCommand(ctx))

	return creatorsCmd
}

func (c *commandContext) templateLoader() *contextstore.Loader {
	cfg := c.configValue()
	if cfg == nil {
		return contextstore.New("")
	}
	return contextstore.New(cfg.Paths.ContextDir)
}

func newCreatorsListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every creator",
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles := creators.Default().Profiles(ctx.templateLoader())
			if asJSON {
				return writeJSON(cmd, profiles)
			}
			rows := make([][]string, 0, len(profiles))
			for _, p := range profiles {
				rows = append(rows, []string{p.ID, creators.Label(p.Role), p.Name, p.Slant, p.Style})
			}
			printTable(cmd, []string{"ID", "Role", "Name", "Slant", "Style"}, rows, nil, "No creators")
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newCreatorsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a creator profile with bio and description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := creators.Default()
			loader := ctx.templateLoader()
			var profile creators.Profile
			if j, err := registry.Journalist(args[0]); err == nil {
				profile = j.Profile(loader)
			} else if a, artistErr := registry.Artist(args[0]); artistErr == nil {
				profile = a.Profile(loader)
			} else {
				return fmt.Errorf("unknown creator %q", args[0])
			}
			if asJSON {
				return writeJSON(cmd, profile)
			}
			printProfile(cmd, profile)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func printProfile(cmd *cobra.Command, p creators.Profile) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", p.Name, creators.Label(p.Role))
	fmt.Fprintf(out, "  ID:    %s\n", p.ID)
	fmt.Fprintf(out, "  Slant: %s\n", p.Slant)
	fmt.Fprintf(out, "  Style: %s\n", p.Style)
	for _, key := range sortedKeys(p.Defaults) {
		fmt.Fprintf(out, "  Default %s: %s\n", strings.ReplaceAll(key, "_", " "), creators.Label(p.Defaults[key]))
	}
	for _, key := range sortedKeys(p.Traits) {
		labels := make([]string, 0, len(p.Traits[key]))
		for _, v := range p.Traits[key] {
			labels = append(labels, creators.Label(v))
		}
		fmt.Fprintf(out, "  %s: %s\n", creators.Label(key), strings.Join(labels, ", "))
	}
	if p.Bio != "" {
		fmt.Fprintf(out, "\nBio:\n%s\n", p.Bio)
	}
	if p.Description != "" {
		fmt.Fprintf(out, "\nDescription:\n%s\n", p.Description)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var templateKinds = []contextstore.Kind{
	contextstore.KindTone,
	contextstore.KindArticleType,
	contextstore.KindSlant,
	contextstore.KindStyle,
	contextstore.KindMedium,
	contextstore.KindAesthetic,
}

func newCreatorsTemplatesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the prompt template values available to creators",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := ctx.templateLoader()
			rows := make([][]string, 0, len(templateKinds))
			for _, kind := range templateKinds {
				values, err := loader.Values(kind)
				if err != nil {
					return err
				}
				rows = append(rows, []string{string(kind), strings.Join(values, ", ")})
			}
			printTable(cmd, []string{"Kind", "Values"}, rows, nil, "No templates")
			return nil
		},
	}
}
