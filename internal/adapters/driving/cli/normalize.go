package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/catalyst-labs/radar/internal/normalize"
)

var (
	normalizeInput  string
	normalizeOutDir string
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize raw documents from JSONL into canonical events",
	Long: `Reads raw documents as JSONL (one document per line) and writes
three JSONL streams into the output directory:

  events.jsonl      canonical events
  quarantine.jsonl  rows needing enrichment, with reasons
  rejects.jsonl     permanently unusable rows, with reasons

A row that fails a data-quality check is quarantined or rejected, never
fatal; the batch always runs to completion.`,
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVar(&normalizeInput, "input", "-", "input JSONL file (- for stdin)")
	normalizeCmd.Flags().StringVar(&normalizeOutDir, "out-dir", ".", "directory for output streams")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	var in io.Reader
	if normalizeInput == "-" {
		in = cmd.InOrStdin()
	} else {
		f, err := os.Open(normalizeInput)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	if err := os.MkdirAll(normalizeOutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	events, err := os.Create(filepath.Join(normalizeOutDir, "events.jsonl"))
	if err != nil {
		return err
	}
	defer events.Close()

	quarantined, err := os.Create(filepath.Join(normalizeOutDir, "quarantine.jsonl"))
	if err != nil {
		return err
	}
	defer quarantined.Close()

	rejected, err := os.Create(filepath.Join(normalizeOutDir, "rejects.jsonl"))
	if err != nil {
		return err
	}
	defer rejected.Close()

	counts, err := normalize.ProcessBatch(in, events, quarantined, rejected)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}

	cmd.Printf("processed %d row(s): ok=%d quarantined=%d rejected=%d\n",
		counts.Total(), counts.OK, counts.Quarantined, counts.Rejected)
	return nil
}
