// Command arrowcodec-schema is a small diagnostic tool: it reads a JSON
// schema file and prints the canonical DSL form of each field, in the
// teacher's cmd/* tool idiom (a thin wrapper over the library, not part
// of the core codec).
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/aclements/arrowcodec/dsl"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arrowcodec-schema <schema.json>",
		Short: "Print the canonical DSL form of each field in a JSON schema file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printSchema(cmd, args[0])
		},
	}
	return cmd
}

func printSchema(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	fields, err := dsl.ParseSchemaJSON(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, f := range fields {
		fmt.Fprintln(cmd.OutOrStdout(), dsl.PrintField(f))
	}
	return nil
}
