package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var parseFormat string

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a structured data file and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		val, err := loadValue(args[0], parseFormat)
		if err != nil {
			return err
		}

		output, err := json.MarshalIndent(val, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling output: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(output))
		return nil
	},
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "", "Input format: json, yaml, toml, csv, ini, xml (default: by file extension)")
	rootCmd.AddCommand(parseCmd)
}
