package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/park285/cheese-board/internal/render"
	"github.com/spf13/cobra"
)

func newSnapshotCmd(o *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Poll a game once and write the board as a PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := o.session(cmd)
			if err != nil {
				return err
			}
			d := o.deps
			if err := d.Sync(sess).PollOnce(cmd.Context()); err != nil {
				return fmt.Errorf("poll game %s: %w", sess.GameID(), err)
			}

			surface := d.Renderer.NewSurface()
			// first pass requests every piece image, second pass draws them
			d.Renderer.Draw(surface)
			d.Assets.Wait()
			d.Renderer.Draw(surface)

			b, err := render.EncodePNG(surface)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return err
			}
			cmd.Println(d.Catalog.RenderOr("board.snapshot_saved", map[string]string{
				"GameID": sess.GameID(),
				"Path":   out,
				"Size":   humanize.Bytes(uint64(len(b))),
			}, out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "board.png", "output file")
	return cmd
}
