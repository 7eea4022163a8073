package main

import (
	"github.com/park285/cheese-board/internal/view/ebitenview"
	"github.com/spf13/cobra"
)

func newPlayCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Open the board window and play by clicking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := o.session(cmd)
			if err != nil {
				return err
			}
			d := o.deps
			sc := d.Sync(sess)
			sc.StartPolling(d.Config.PollInterval())
			defer sc.StopPolling()

			g := ebitenview.New(d.Renderer, d.Controller(sc), sc, d.Logger)
			return ebitenview.Run(g, "Chess "+sess.GameID(), d.Config.FPS)
		},
	}
}
