package cli

import (
	"fmt"
	"io"
	"os"

	"SkinLens/pkg/skinmetric"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func newDeriveCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "derive <file|->",
		Short: "Print the report for a skin analysis result document",
		Long: "Reads a detection result document from a file, or stdin when the argument is -,\n" +
			"and prints the derived scores, overlays and advice.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatJSON && format != formatYAML {
				return fmt.Errorf("unsupported --format %q (use json or yaml)", format)
			}

			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if !jsoniter.Valid(data) {
				return fmt.Errorf("%s is not a JSON document", args[0])
			}

			return writeReport(cmd.OutOrStdout(), skinmetric.Analyze(data), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "Output format: json or yaml")

	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func writeReport(w io.Writer, report skinmetric.Report, format string) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}

	data, err := jsoniter.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
