// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/apa-formatter/internal/convert"
	"github.com/pdiddy/apa-formatter/internal/reference"
	"github.com/pdiddy/apa-formatter/pkg/types"
)

var refsCmd = &cobra.Command{
	Use:   "refs [file]",
	Short: "Sort and format a reference list",
	Long: `Refs reads one citation per line from a file or stdin, sorts the list
alphabetically, and prints each entry in APA 7 form. Italic spans are marked
with asterisks. Use --yaml to dump the parsed fields instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRefs,
}

func init() {
	refsCmd.Flags().Bool("yaml", false, "print parsed references as YAML")

	rootCmd.AddCommand(refsCmd)
}

func runRefs(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return err
	}
	lines := convert.Lines(string(data))
	if len(lines) == 0 {
		return fmt.Errorf("no references provided")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p := reference.NewParser(cfg.Formatter.WithDefaults())

	refs := make([]types.ParsedReference, 0, len(lines))
	for _, l := range reference.Sort(lines) {
		refs = append(refs, p.Parse(l))
	}

	w := cmd.OutOrStdout()
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(refs)
	}
	for _, r := range refs {
		fmt.Fprintln(w, strings.TrimSpace(reference.Emphasize(r, "*")))
	}
	return nil
}
