package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/lecnote/internal/application/dto"
	"github.com/YoshitsuguKoike/lecnote/internal/application/service"
	"github.com/YoshitsuguKoike/lecnote/internal/infra/persistence/file"
	"github.com/YoshitsuguKoike/lecnote/internal/infrastructure/di"
)

func newNoteCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage saved notes",
	}
	cmd.AddCommand(newNoteListCmd(s))
	cmd.AddCommand(newNoteShowCmd(s))
	cmd.AddCommand(newNoteCreateCmd(s))
	cmd.AddCommand(newNoteUpdateCmd(s))
	cmd.AddCommand(newNoteDeleteCmd(s))
	cmd.AddCommand(newNoteExportCmd(s))
	return cmd
}

func newNoteListCmd(s *session) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		Args:  cobra.NoArgs,
		RunE: s.withContainer(func(cmd *cobra.Command, c *di.Container, args []string) error {
			summaries, err := c.GetNoteUseCase().List(cmd.Context(), owner)
			if err != nil {
				return err
			}
			return printSummaries(cmd.OutOrStdout(), summaries)
		}),
	}
	cmd.Flags().StringVar(&owner, "owner", "", "only notes of this owner")
	return cmd
}

func newNoteShowCmd(s *session) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: s.withContainer(func(cmd *cobra.Command, c *di.Container, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			n, err := c.GetNoteUseCase().Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printNote(cmd.OutOrStdout(), n, format)
		}),
	}
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json or markdown")
	return cmd
}

func newNoteCreateCmd(s *session) *cobra.Command {
	var title, contentFile string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note, blank or from a JSON block document",
		Args:  cobra.NoArgs,
		RunE: s.withContainer(func(cmd *cobra.Command, c *di.Container, args []string) error {
			in := dto.CreateNoteInput{Title: title}
			if contentFile != "" {
				content, err := readContentFile(contentFile, cmd.InOrStdin())
				if err != nil {
					return err
				}
				in.Content = content
			}
			n, err := c.GetNoteUseCase().Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), n)
		}),
	}
	cmd.Flags().StringVar(&title, "title", "", "note title")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "JSON file holding {\"blocks\": [...]}, - for stdin")
	return cmd
}

func newNoteUpdateCmd(s *session) *cobra.Command {
	var title, contentFile string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the title and/or content of a note",
		Args:  cobra.ExactArgs(1),
		RunE: s.withContainer(func(cmd *cobra.Command, c *di.Container, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			var in dto.UpdateNoteInput
			if cmd.Flags().Changed("title") {
				in.Title = &title
			}
			if contentFile != "" {
				content, err := readContentFile(contentFile, cmd.InOrStdin())
				if err != nil {
					return err
				}
				in.Content = content
			}
			n, err := c.GetNoteUseCase().Update(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), n)
		}),
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "JSON file holding {\"blocks\": [...]}, - for stdin")
	return cmd
}

func newNoteDeleteCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: s.withContainer(func(cmd *cobra.Command, c *di.Container, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			removed, err := c.GetNoteUseCase().Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("note %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted note %d\n", id)
			return nil
		}),
	}
}

func newNoteExportCmd(s *session) *cobra.Command {
	var (
		outDir     string
		noTitle    bool
		noMetadata bool
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a note as Markdown",
		Long:  "Renders the note as Markdown. With --out the file is written to that directory under its export name.",
		Args:  cobra.ExactArgs(1),
		RunE: s.withContainer(func(cmd *cobra.Command, c *di.Container, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			opts := service.ExportOptions{IncludeTitle: !noTitle, IncludeMetadata: !noMetadata}
			md, name, err := c.GetNoteUseCase().Export(cmd.Context(), id, opts)
			if err != nil {
				return err
			}

			if outDir == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			}
			path := filepath.Join(outDir, name)
			if err := file.WriteFileAtomic(afero.NewOsFs(), path, []byte(md), 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}),
	}
	cmd.Flags().StringVar(&outDir, "out", "", "directory to write <title>.md into")
	cmd.Flags().BoolVar(&noTitle, "no-title", false, "omit the title heading")
	cmd.Flags().BoolVar(&noMetadata, "no-metadata", false, "omit the video metadata header")
	return cmd
}
