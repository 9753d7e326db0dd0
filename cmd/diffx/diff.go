package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kako-jun/diffx-go/pkg/differ"
	"github.com/kako-jun/diffx-go/pkg/formatter"
	"github.com/kako-jun/diffx-go/pkg/parser"
	"github.com/kako-jun/diffx-go/pkg/value"
)

var diffFlags struct {
	inputFormat      string
	outputFormat     string
	epsilon          float64
	arrayIDKey       string
	ignoreKeysRegex  string
	pathFilter       string
	ignoreWhitespace bool
	ignoreCase       bool
	brief            bool
	quiet            bool
}

var diffCmd = &cobra.Command{
	Use:   "diff <old> <new>",
	Short: "Compare two structured data files",
	Long: `Compare two structured data files semantically. Use "-" in place of a
file name to read that side from stdin (with --format to name its format).`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVarP(&diffFlags.inputFormat, "format", "f", "", "Input format: json, yaml, toml, csv, ini, xml (default: by file extension)")
	diffCmd.Flags().StringVarP(&diffFlags.outputFormat, "output", "o", "diffx", "Output format: diffx, json, yaml")
	diffCmd.Flags().Float64Var(&diffFlags.epsilon, "epsilon", 0, "Tolerance for numeric comparisons")
	diffCmd.Flags().StringVar(&diffFlags.arrayIDKey, "array-id-key", "", "Key identifying array elements across reordering")
	diffCmd.Flags().StringVar(&diffFlags.ignoreKeysRegex, "ignore-keys-regex", "", "Regex for mapping keys to ignore")
	diffCmd.Flags().StringVar(&diffFlags.pathFilter, "path", "", "Only show differences whose path contains this text")
	diffCmd.Flags().BoolVar(&diffFlags.ignoreWhitespace, "ignore-whitespace", false, "Ignore whitespace differences in strings")
	diffCmd.Flags().BoolVar(&diffFlags.ignoreCase, "ignore-case", false, "Ignore case differences in strings")
	diffCmd.Flags().BoolVar(&diffFlags.brief, "brief", false, "Report only whether the inputs differ")
	diffCmd.Flags().BoolVarP(&diffFlags.quiet, "quiet", "q", false, "Suppress output; report through the exit status only")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	// Validate the output format up front so a bad name fails before any
	// parsing or comparison work.
	format, err := formatter.ParseFormat(diffFlags.outputFormat)
	if err != nil {
		return err
	}

	oldVal, err := loadValue(args[0], diffFlags.inputFormat)
	if err != nil {
		return err
	}
	newVal, err := loadValue(args[1], diffFlags.inputFormat)
	if err != nil {
		return err
	}

	opts := differ.NewOptions()
	opts.Epsilon = diffFlags.epsilon
	opts.ArrayIDKey = diffFlags.arrayIDKey
	opts.IgnoreKeysRegex = diffFlags.ignoreKeysRegex
	opts.PathFilter = diffFlags.pathFilter
	opts.OutputFormat = diffFlags.outputFormat
	opts.IgnoreWhitespace = diffFlags.ignoreWhitespace
	opts.IgnoreCase = diffFlags.ignoreCase
	opts.Brief = diffFlags.brief
	opts.Quiet = diffFlags.quiet

	results, err := differ.Diff(oldVal, newVal, opts)
	if err != nil {
		return err
	}

	if !opts.Quiet {
		if opts.Brief {
			if differ.HasChanges(results) {
				fmt.Fprintf(cmd.OutOrStdout(), "Files %s and %s differ\n", args[0], args[1])
			}
		} else {
			out, err := formatter.Output(results, format)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			if format != formatter.FormatDiffx {
				fmt.Fprintln(cmd.OutOrStdout())
			}
		}
	}

	if differ.HasChanges(results) {
		return errDifferencesFound
	}
	return nil
}

func loadValue(path, format string) (*value.Value, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if format == "" {
		format = detectFormat(path)
		if format == "" {
			return nil, fmt.Errorf("cannot detect input format of %s; use --format", path)
		}
	}
	return parseContent(string(data), format)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".csv":
		return "csv"
	case ".ini":
		return "ini"
	case ".xml":
		return "xml"
	}
	return ""
}

func parseContent(content, format string) (*value.Value, error) {
	switch format {
	case "json":
		return parser.ParseJSON(content)
	case "yaml":
		return parser.ParseYAML(content)
	case "toml":
		return parser.ParseTOML(content)
	case "csv":
		return parser.ParseCSV(content)
	case "ini":
		return parser.ParseINI(content)
	case "xml":
		return parser.ParseXML(content)
	default:
		return nil, fmt.Errorf("unsupported input format: %s (supported: json, yaml, toml, csv, ini, xml)", format)
	}
}
