package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bubblesheet/omr-core/pkg/config"
	"github.com/bubblesheet/omr-core/pkg/debugdump"
	"github.com/bubblesheet/omr-core/pkg/logging"
	"github.com/bubblesheet/omr-core/pkg/pixelimage"
	"github.com/bubblesheet/omr-core/pkg/scan"
)

// NewDecodeCmd implements spec.md §6's CLI surface:
//
//	decode --input <path> --questions <N> --choices <C> --source upload|camera [--json]
//
// exit code 0 on success, 2 if markers not found, 3 on image decode error.
func NewDecodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "decode a photographed or scanned answer sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("decode: resolving config: %w", err)
			}

			input, _ := cmd.Flags().GetString("input")
			source, _ := cmd.Flags().GetString("source")
			asJSON, _ := cmd.Flags().GetBool("json")
			withDebugScores, _ := cmd.Flags().GetBool("debug-scores")

			if input == "" {
				return fmt.Errorf("decode: --input is required")
			}

			decodeCtx := logging.AppendCtx(ctx, slog.String("correlationId", uuid.NewString()))
			slog.InfoContext(decodeCtx, "decoding sheet", "input", input, "questions", cfg.NumQuestions, "choices", cfg.NumChoices, "source", source)

			f, err := os.Open(input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "decode: %v\n", err)
				os.Exit(3)
			}
			defer f.Close()

			img, err := pixelimage.Decode(f)
			if err != nil {
				fmt.Fprintf(os.Stderr, "decode: %v\n", err)
				os.Exit(3)
			}

			dumper := debugdump.Dumper{Dir: cfg.DebugDir}
			resp, err := scan.Decode(img, scan.Options{
				NumQuestions:    cfg.NumQuestions,
				NumChoices:      cfg.NumChoices,
				Source:          source,
				WithDebugScores: withDebugScores,
				Dump:            dumper,
				DumpTS:          time.Now().UnixMilli(),
			})
			if err != nil {
				var se *scan.Error
				if errors.As(err, &se) && (se.Kind == scan.InputDecodeError || se.Kind == scan.DimensionError || se.Kind == scan.TemplateUnknown) {
					fmt.Fprintf(os.Stderr, "decode: %v\n", err)
					os.Exit(3)
				}
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				if err := enc.Encode(resp); err != nil {
					return fmt.Errorf("decode: encoding response: %w", err)
				}
			} else {
				fmt.Printf("studentId=%s markersFound=%v\n", resp.StudentID, resp.MarkersFound)
				for i, a := range resp.Answers {
					fmt.Printf("Q%-3d %s\n", i+1, a)
				}
			}

			if !resp.MarkersFound {
				os.Exit(2)
			}
			return nil
		},
	}

	pf := cmd.Flags()
	config.Bind(pf)
	pf.StringP("input", "i", "", "path to the answer-sheet image")
	pf.String("source", "upload", "image source: upload|camera")
	pf.Bool("json", false, "emit the decode response as JSON")
	pf.Bool("debug-scores", false, "include per-bubble diagnostic scores in the response")
	return cmd
}
