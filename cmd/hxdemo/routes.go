package main

import (
	"fmt"
	"io"

	"github.com/Suhaibinator/hxdemo/internal/app"
	"github.com/Suhaibinator/hxdemo/pkg/router"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the registered routes",
	Long: `Build the server without listening and print every registered route.
Registration errors, such as ambiguous patterns, are reported here too.`,
	RunE: runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

func runRoutes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cfg, nil)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}

	if err := renderRoutes(cmd.OutOrStdout(), a.Routes()); err != nil {
		return fmt.Errorf("render routes: %w", err)
	}
	return nil
}

func renderRoutes(w io.Writer, routes []router.RouteInfo) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(
			tw.Rendition{
				Borders: tw.BorderNone,
				Symbols: tw.NewSymbols(tw.StyleASCII),
				Settings: tw.Settings{
					Lines: tw.Lines{
						ShowHeaderLine: tw.Off,
						ShowFooterLine: tw.Off,
						ShowTop:        tw.Off,
						ShowBottom:     tw.Off,
					},
					Separators: tw.Separators{
						ShowHeader:     tw.Off,
						ShowFooter:     tw.Off,
						BetweenRows:    tw.Off,
						BetweenColumns: tw.Off,
					},
				},
			},
		)),
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
	)

	data := make([][]string, 0, len(routes))
	for _, r := range routes {
		data = append(data, []string{r.Method, r.Pattern})
	}

	table.Header([]string{"METHOD", "PATTERN"})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
