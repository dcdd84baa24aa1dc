package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/lecnote/internal/application/dto"
	"github.com/YoshitsuguKoike/lecnote/internal/infrastructure/di"
)

func newProcessCmd(s *session) *cobra.Command {
	var (
		owner  string
		format string
	)

	cmd := &cobra.Command{
		Use:   "process <video>",
		Short: "Generate a structured note from a lecture video",
		Long: `Extracts the audio track with ffmpeg, transcribes it and turns the transcript
into a block note. The saved note is printed as JSON, or as Markdown with --format markdown.`,
		Args: cobra.ExactArgs(1),
		RunE: s.withContainer(func(cmd *cobra.Command, c *di.Container, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read video: %w", err)
			}

			s.logger.Info("Processing %s (%d bytes)", path, len(data))
			n, err := c.GetProcessVideoUseCase().Execute(cmd.Context(), dto.ProcessVideoInput{
				Video:    data,
				FileName: filepath.Base(path),
				OwnerID:  owner,
			})
			if err != nil {
				return err
			}
			return printNote(cmd.OutOrStdout(), n, format)
		}),
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner id recorded on the note")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json or markdown")
	return cmd
}
