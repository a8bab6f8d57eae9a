package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"danmaku/internal/settings"
	"danmaku/internal/translate"
)

func newStyleCommand(ctx *commandContext) *cobra.Command {
	styleCmd := &cobra.Command{
		Use:   "style",
		Short: "Inspect or change the caption style",
	}

	styleCmd.AddCommand(newStyleListCommand(ctx))
	styleCmd.AddCommand(newStyleGetCommand(ctx))
	styleCmd.AddCommand(newStyleSetCommand(ctx))

	return styleCmd
}

func newStyleListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available caption styles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSettings(func(store *settings.Store) error {
				current, _, err := ctx.currentStyle(cmd.Context(), store)
				if err != nil {
					return err
				}
				styles := translate.Styles()
				rows := make([][]string, 0, len(styles))
				for _, style := range styles {
					marker := ""
					if style.Key == current {
						marker = "*"
					}
					rows = append(rows, []string{string(style.Key), style.Label, yesNo(style.Menu), marker})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]column{left("Key"), left("Label"), left("Menu"), left("Current")},
					rows,
				))
				return nil
			})
		},
	}
}

func newStyleGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the active caption style",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSettings(func(store *settings.Store) error {
				current, persisted, err := ctx.currentStyle(cmd.Context(), store)
				if err != nil {
					return err
				}
				source := "config"
				if persisted {
					source = "saved"
				}
				style, _ := translate.Lookup(current)
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) [%s]\n", current, style.Label, source)
				return nil
			})
		},
	}
}

func newStyleSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY",
		Short: "Persist the caption style",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := translate.ParseStyle(args[0])
			if err != nil {
				return err
			}
			return ctx.withSettings(func(store *settings.Store) error {
				revision, err := store.SetStyle(cmd.Context(), string(key))
				if err != nil {
					return err
				}
				style, _ := translate.Lookup(key)
				fmt.Fprintf(cmd.OutOrStdout(), "Caption style set to %s (%s), revision %d\n", key, style.Label, revision)
				return nil
			})
		},
	}
}
