// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/apa-formatter/internal/format"
)

var formatCmd = &cobra.Command{
	Use:   "format [files...]",
	Short: "Format documents in APA 7 style",
	Long: `Format reads each file, builds the APA 7 document, and writes it next to
the input (or into --out-dir) as <name>_apa.docx or <name>_apa.html. Existing
outputs are skipped unless --force is given.

With no files, format reads pasted text from stdin and writes the result to
stdout, or to --out when it is set.`,
	RunE: runFormat,
}

func init() {
	formatCmd.Flags().StringP("output", "o", "docx", "output format: docx or html")
	formatCmd.Flags().String("out-dir", "", "directory for formatted files (default: next to each input)")
	formatCmd.Flags().String("out", "", "output file when reading stdin")
	formatCmd.Flags().Bool("force", false, "overwrite existing outputs")

	rootCmd.AddCommand(formatCmd)
}

func runFormat(cmd *cobra.Command, args []string) error {
	outName, _ := cmd.Flags().GetString("output")
	out, err := format.ParseOutput(outName)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := newFormatter(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		dest, _ := cmd.Flags().GetString("out")
		return formatStdin(cmd, f, out, dest)
	}

	outDir, _ := cmd.Flags().GetString("out-dir")
	force, _ := cmd.Flags().GetBool("force")
	opts := format.BatchOptions{OutDir: outDir, Output: out, Force: force}

	result := f.FormatFiles(cmd.Context(), args, opts, cmd.OutOrStdout())
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed formatting", result.Failed)
	}
	return nil
}

func formatStdin(cmd *cobra.Command, f *format.Formatter, out format.Output, dest string) error {
	text, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	res, err := f.Format(cmd.Context(), format.Input{Text: string(text)}, out)
	if err != nil {
		return err
	}

	if dest == "" {
		if out == format.OutputDOCX {
			dest = res.Document.Filename
		} else {
			_, err := cmd.OutOrStdout().Write(append(res.Document.Data, '\n'))
			return err
		}
	}
	if err := os.WriteFile(dest, res.Document.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote: %s\n", dest)
	return nil
}
