package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bubblesheet/omr-core/pkg/logging"
)

// NewRoot builds the omrctl command tree: decode, render, version.
func NewRoot(ctx context.Context, gitSHA string) *cobra.Command {
	root := &cobra.Command{
		Use:   "omrctl",
		Short: "decode and render OMR answer sheets",
		Long:  "omrctl is a thin offline-batch wrapper around the OMR core: decode a photographed or scanned answer sheet, or render the PDF templates the detector is calibrated against.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if f := cmd.Flags().Lookup("log-level"); f != nil {
				if err := level.UnmarshalText([]byte(strings.ToUpper(f.Value.String()))); err != nil {
					level = slog.LevelInfo
				}
			}
			slog.SetDefault(logging.Logger(os.Stderr, false, level))
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(cmd.Short)
			for _, sub := range cmd.Commands() {
				fmt.Printf("  %-10s %s\n", sub.Use, sub.Short)
			}
		},
	}

	root.AddCommand(
		NewVersionCmd(gitSHA),
		NewDecodeCmd(ctx),
		NewRenderCmd(ctx),
	)
	return root
}

func NewVersionCmd(gitSHA string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the build's git SHA",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(gitSHA)
		},
	}
}
