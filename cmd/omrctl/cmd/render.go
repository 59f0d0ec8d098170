package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bubblesheet/omr-core/pkg/config"
	"github.com/bubblesheet/omr-core/pkg/render"
)

// NewRenderCmd implements spec.md §6's render surface:
//
//	render --template 20|50|100 --choices <C> --output <path> [--name ...] [--exam-code ...]
//
// exit code 0 on success, 1 on an I/O or template error.
func NewRenderCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "render a blank answer sheet PDF for a registered template",
		RunE: func(cmd *cobra.Command, args []string) error {
			template, _ := cmd.Flags().GetInt("template")
			choices, _ := cmd.Flags().GetInt("choices")
			output, _ := cmd.Flags().GetString("output")
			name, _ := cmd.Flags().GetString("name")
			examCode, _ := cmd.Flags().GetString("exam-code")
			headerText, _ := cmd.Flags().GetString("header")

			if output == "" {
				return fmt.Errorf("render: --output is required")
			}

			f, err := os.Create(output)
			if err != nil {
				slog.ErrorContext(ctx, "render: create output", "error", err)
				os.Exit(1)
			}
			defer f.Close()

			req := render.Request{
				Name:               name,
				ExamCode:           examCode,
				HeaderText:         headerText,
				NumQuestions:       template,
				ChoicesPerQuestion: choices,
			}
			if err := render.Sheet(f, req); err != nil {
				slog.ErrorContext(ctx, "render: sheet", "error", err)
				os.Exit(1)
			}

			slog.InfoContext(ctx, "rendered sheet", "output", output, "template", template, "choices", choices, "sheetId", render.SheetID(req))
			return nil
		},
	}

	pf := cmd.Flags()
	config.BindLogLevel(pf)
	pf.Int("template", 20, "template size: number of questions (20, 50, 100)")
	pf.Int("choices", 4, "number of answer choices per question")
	pf.StringP("output", "o", "", "path to write the rendered PDF to")
	pf.String("name", "", "header name field")
	pf.String("exam-code", "", "header exam-code field")
	pf.String("header", "", "header banner text")
	return cmd
}
