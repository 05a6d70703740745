package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"fhirgate/internal/config"
	"fhirgate/internal/core/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the error catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalogFromConfig()
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		return listCatalog(cmd.OutOrStdout(), cat, output)
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show KEY",
	Short: "Print the response body for a catalog key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalogFromConfig()
		if err != nil {
			return err
		}
		return showEntry(cmd.OutOrStdout(), cat, args[0])
	},
}

func catalogFromConfig() (*catalog.Catalog, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return loadCatalog(cfg)
}

func listCatalog(w io.Writer, cat *catalog.Catalog, output string) error {
	switch output {
	case "yaml":
		entries := make([]catalog.Entry, 0, cat.Len())
		for _, key := range cat.Keys() {
			entries = append(entries, cat.MustResolve(key))
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]any{"entries": entries}); err != nil {
			return err
		}
		return enc.Close()
	case "", "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tSTATUS\tCODE\tSYSTEM CODE")
		for _, key := range cat.Keys() {
			e := cat.MustResolve(key)
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", e.Key, e.Status, e.Code, e.SystemCode)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

func showEntry(w io.Writer, cat *catalog.Catalog, key string) error {
	entry, err := cat.Resolve(key)
	if err != nil {
		return err
	}
	resp, err := catalog.Render(entry)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "HTTP %d\n%s\n", resp.StatusCode, resp.Content)
	return nil
}

func SetupCatalogCmd() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd, catalogShowCmd)

	catalogListCmd.Flags().StringP("output", "o", "table", "Output format: table or yaml")
}
