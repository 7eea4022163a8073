package main

import (
	"errors"

	"github.com/park285/cheese-board/internal/gamelist"
	"github.com/spf13/cobra"
)

func newGamesCmd(o *rootOptions) *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "games",
		Short: "List the ongoing games of --player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.playerID == "" {
				return errors.New("--player is required")
			}
			d := o.deps
			w := d.Games()
			w.SetPlayer(o.playerID, d.Config.PlayerName)

			show := func(entries []gamelist.Entry) {
				cmd.Println(d.Catalog.RenderOr("gamelist.header", nil, "Ongoing Games"))
				if len(entries) == 0 {
					cmd.Println(d.Catalog.RenderOr("gamelist.empty", nil, "No ongoing games."))
				}
				for _, e := range entries {
					cmd.Println(d.Catalog.RenderOr("gamelist.entry",
						map[string]string{"GameID": e.GameID, "Message": e.Message}, e.Message))
				}
			}

			if !follow {
				if err := w.Refresh(cmd.Context()); err != nil {
					return err
				}
				show(w.Entries())
				return nil
			}
			w.OnUpdate(show)
			w.Start(cmd.Context())
			<-cmd.Context().Done()
			w.Stop()
			w.Wait()
			return nil
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep refreshing the list")
	return cmd
}
