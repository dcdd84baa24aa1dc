package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/lecnote/internal/application/dto"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/model/note"
	"github.com/YoshitsuguKoike/lecnote/internal/infrastructure/di"
)

func newBlockCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "block",
		Short: "Edit the blocks of a note",
	}
	cmd.AddCommand(newBlockAddCmd(s))
	cmd.AddCommand(newBlockDeleteCmd(s))
	cmd.AddCommand(newBlockConvertCmd(s))
	cmd.AddCommand(newBlockSetCmd(s))
	cmd.AddCommand(newBlockCheckCmd(s))
	cmd.AddCommand(newBlockMoveCmd(s))
	return cmd
}

func newBlockAddCmd(s *session) *cobra.Command {
	var after, blockType string
	cmd := &cobra.Command{
		Use:   "add <note>",
		Short: "Insert a block after --after, or at the end",
		Args:  cobra.ExactArgs(1),
		RunE: s.withContainer(func(cmd *cobra.Command, c *di.Container, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			_, newID, err := c.GetBlockEditor().AddBlock(cmd.Context(), dto.AddBlockInput{
				NoteID:  id,
				AfterID: after,
				Type:    note.BlockType(blockType),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), newID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&after, "after", "", "id of the block to insert after")
	cmd.Flags().StringVar(&blockType, "type", string(note.BlockTypeEmpty), "block type")
	return cmd
}

func newBlockDeleteCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <note> <block>",
		Short: "Remove a block",
		Args:  cobra.ExactArgs(2),
		RunE: s.withContainer(func(cmd *cobra.Command, c *di.Container, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			n, err := c.GetBlockEditor().RemoveBlock(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return printBlocks(cmd.OutOrStdout(), n)
		}),
	}
}

func newBlockConvertCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <note> <block> <type>",
		Short: "Change the type of a block",
		Args:  cobra.ExactArgs(3),
		RunE: s.withContainer(func(cmd *cobra.Command, c *di.Container, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			t, err := note.ParseBlockType(args[2])
			if err != nil {
				return err
			}
			n, err := c.GetBlockEditor().ConvertBlock(cmd.Context(), id, args[1], t)
			if err != nil {
				return err
			}
			return printBlocks(cmd.OutOrStdout(), n)
		}),
	}
}

func newBlockSetCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "set <note> <block> <text>",
		Short: "Replace the text of a block",
		Args:  cobra.ExactArgs(3),
		RunE: s.withContainer(func(cmd *cobra.Command, c *di.Container, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			n, err := c.GetBlockEditor().SetBlockContent(cmd.Context(), id, args[1], args[2])
			if err != nil {
				return err
			}
			return printBlocks(cmd.OutOrStdout(), n)
		}),
	}
}

func newBlockCheckCmd(s *session) *cobra.Command {
	var uncheck bool
	cmd := &cobra.Command{
		Use:   "check <note> <block>",
		Short: "Tick a todo block (--uncheck to clear it)",
		Args:  cobra.ExactArgs(2),
		RunE: s.withContainer(func(cmd *cobra.Command, c *di.Container, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			n, err := c.GetBlockEditor().CheckBlock(cmd.Context(), id, args[1], !uncheck)
			if err != nil {
				return err
			}
			return printBlocks(cmd.OutOrStdout(), n)
		}),
	}
	cmd.Flags().BoolVar(&uncheck, "uncheck", false, "clear the checkbox instead")
	return cmd
}

func newBlockMoveCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "move <note> <block> <delta>",
		Short: "Move a block up (negative) or down (positive)",
		Long:  "Moves a block by delta positions, clamped to the document. Put -- before a negative delta.",
		Args:  cobra.ExactArgs(3),
		RunE: s.withContainer(func(cmd *cobra.Command, c *di.Container, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			delta, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid delta %q", args[2])
			}
			n, err := c.GetBlockEditor().MoveBlock(cmd.Context(), id, args[1], delta)
			if err != nil {
				return err
			}
			return printBlocks(cmd.OutOrStdout(), n)
		}),
	}
}
