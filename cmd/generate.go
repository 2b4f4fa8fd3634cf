// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/hexya-erp/quickboard/src/models"
	"github.com/hexya-erp/quickboard/src/quickboard"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the quickboard",
	Long: `Replace the dashboard items with the ones generated for the given models.
Models are given by name (e.g. sale.order) or by id with the --model flag.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		setupLogger()
		env := openEnvironment(ctx)
		defer env.Close()
		notifier, closeNotifier := setupNotifier(nil)
		defer closeNotifier()

		modelIDs, err := resolveModels(ctx, env.registry, viper.GetStringSlice("Generate.Models"))
		if err != nil {
			log.Panic("Unable to resolve models", "error", err)
		}
		gen := quickboard.NewGenerator(env.registry, env.store, notifier)
		res, err := gen.Generate(ctx, quickboard.Request{
			ModelIDs:   modelIDs,
			LayoutByAI: viper.GetBool("Generate.LayoutByAI"),
		})
		if err != nil {
			log.Panic("Quickboard generation failed", "error", err)
		}
		printResult(os.Stdout, res)
	},
}

// resolveModels returns the ids of the given models, which are
// given either by id or by name. Unknown names are an error.
func resolveModels(ctx context.Context, registry models.Registry, refs []string) ([]int64, error) {
	res := make([]int64, 0, len(refs))
	for _, ref := range refs {
		if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
			res = append(res, id)
			continue
		}
		entity, ok, err := registry.EntityByName(ctx, ref)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("unknown model %s", ref)
		}
		res = append(res, entity.ID)
	}
	return res, nil
}

var (
	headerColor = color.New(color.FgGreen, color.Bold)
	typeColors  = map[models.ItemType]*color.Color{
		models.ItemBasic: color.New(color.FgYellow),
		models.ItemChart: color.New(color.FgCyan),
		models.ItemList:  color.New(color.FgMagenta),
	}
)

// printResult writes a summary of the generated items to w.
// Colors are only used when stdout is a terminal.
func printResult(w io.Writer, res *quickboard.Result) {
	headerColor.Fprintf(w, "Run %s: %d items generated\n", res.Run, res.Count)
	for _, item := range res.Items {
		itemType := string(item.Type)
		if c, ok := typeColors[item.Type]; ok {
			itemType = c.Sprintf("%-6s", item.Type)
		}
		fmt.Fprintf(w, "  [%d] %-40s %s at (%d,%d) size %dx%d\n",
			item.ID, item.Name, itemType, item.XPos, item.YPos, item.Width, item.Height)
	}
}

func init() {
	generateCmd.Flags().StringSliceP("model", "m", []string{}, "Model name or id to generate the quickboard for. May be repeated.")
	viper.BindPFlag("Generate.Models", generateCmd.Flags().Lookup("model"))
	generateCmd.Flags().Bool("layout-by-ai", false, "Ask for an AI computed layout")
	viper.BindPFlag("Generate.LayoutByAI", generateCmd.Flags().Lookup("layout-by-ai"))
	QuickboardCmd.AddCommand(generateCmd)
}
