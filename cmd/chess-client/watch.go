package main

import (
	"image"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/notation"
	"github.com/park285/cheese-board/internal/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd(o *rootOptions) *cobra.Command {
	var pngOut string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a game in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := o.session(cmd)
			if err != nil {
				return err
			}
			d := o.deps
			sc := d.Sync(sess)

			var last board.State
			sc.OnSnapshot(func(st board.State) {
				if last != nil && last.Equal(st) {
					return
				}
				last = st
				cmd.Println(notation.ASCII(st))
				cmd.Println(notation.FEN(st, true))
			})

			ctx := cmd.Context()
			loop := render.NewFrameLoop(d.Renderer, d.Config.FPS)
			if pngOut != "" {
				loop.OnFrame(func(img *image.RGBA) {
					if err := writePNG(pngOut, img); err != nil {
						d.Logger.Warn("watch_png_failed", zap.Error(err))
					}
				})
			}
			go func() { _ = loop.Run(ctx) }()

			sc.StartPolling(d.Config.PollInterval())
			defer sc.StopPolling()

			status := time.NewTicker(30 * time.Second)
			defer status.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-status.C:
					cmd.Println(syncStatus(o, sc.LastSync()))
				}
			}
		},
	}
	cmd.Flags().StringVar(&pngOut, "png", "", "keep this file updated with a picture of the board")
	return cmd
}

func syncStatus(o *rootOptions, at time.Time) string {
	if at.IsZero() {
		return o.deps.Catalog.RenderOr("board.never_synced", nil, "not synced yet")
	}
	ago := humanize.Time(at)
	return o.deps.Catalog.RenderOr("board.synced", map[string]string{"Ago": ago}, "last sync "+ago)
}

func writePNG(path string, img image.Image) error {
	b, err := render.EncodePNG(img)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
