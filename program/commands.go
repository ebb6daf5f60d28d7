package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/keilerkonzept/key-overlay-tui/internal/config"
	"github.com/keilerkonzept/key-overlay-tui/internal/keys"
)

func newColumnsCmd(opts *runOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "Validate the config and list its columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "config: %s\n\n", cfg.Source)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), columnsTable(cfg))
			return nil
		},
	}
}

func columnsTable(cfg config.Config) *uitable.Table {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("#"), bold.Sprint("Name"), bold.Sprint("Keys"), bold.Sprint("Width"), bold.Sprint("Color"), bold.Sprint("Alpha"))
	for i, p := range cfg.Props() {
		name := p.Name
		if name == "" {
			name = keys.Name(p.Keys)
		}
		ks := make([]string, len(p.Keys))
		for j, k := range p.Keys {
			ks[j] = string(k)
		}
		tbl.AddRow(
			i+1,
			name,
			strings.Join(ks, " "),
			p.Width,
			fmt.Sprintf("#%06x", p.Color),
			p.Alpha,
		)
	}
	tbl.RightAlign(0)
	return tbl
}

func newDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the default config as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.Default().Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
