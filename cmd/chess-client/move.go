package main

import (
	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/notation"
	"github.com/spf13/cobra"
)

func newMoveCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move FROM TO",
		Short: "Submit one move for --game/--player and show the board afterwards",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := board.ParseSquare(args[0])
			if err != nil {
				return err
			}
			to, err := board.ParseSquare(args[1])
			if err != nil {
				return err
			}
			sess, err := o.session(cmd)
			if err != nil {
				return err
			}
			sc := o.deps.Sync(sess)
			mv := board.Move{From: from, To: to}
			if err := sc.SubmitMove(cmd.Context(), mv); err != nil {
				return err
			}
			cmd.Println(o.deps.Catalog.RenderOr("board.move_sent", map[string]string{"Move": mv.String()}, mv.String()))
			cmd.Println(notation.ASCII(o.deps.Model.Snapshot()))
			return nil
		},
	}
}
