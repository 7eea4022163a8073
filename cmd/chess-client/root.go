package main

import (
	"fmt"
	"os"

	"github.com/park285/cheese-board/internal/app"
	"github.com/park285/cheese-board/internal/config"
	"github.com/park285/cheese-board/internal/obslog"
	"github.com/park285/cheese-board/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	gameID   string
	playerID string
	server   string

	deps *app.Deps
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "chess-client",
		Short:         "Polling chess board client",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.deps.Close()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.gameID, "game", "", "join an existing game id instead of asking for a new game")
	pf.StringVar(&opts.playerID, "player", "", "player id to act as in --game")
	pf.StringVar(&opts.server, "server", "", "chess server url (env: CHESS_SERVER_URL)")

	cmd.AddCommand(
		newPlayCmd(opts),
		newWatchCmd(opts),
		newSnapshotCmd(opts),
		newGamesCmd(opts),
		newMoveCmd(opts),
	)
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	return cmd
}

func (o *rootOptions) init(cmd *cobra.Command) error {
	if err := obslog.InitFromEnv("chess-client"); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if o.server != "" {
		if err := os.Setenv("CHESS_SERVER_URL", o.server); err != nil {
			return err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	deps, err := app.New(cmd.Context(), cfg, obslog.L())
	if err != nil {
		return err
	}
	o.deps = deps
	obslog.L().Debug("client_ready", zap.String("server", cfg.ServerURL), zap.Int("grid", cfg.GridSize))
	return nil
}

func (o *rootOptions) session(cmd *cobra.Command) (session.Session, error) {
	s, err := o.deps.StartSession(cmd.Context(), o.gameID, o.playerID)
	if err != nil {
		return session.Session{}, err
	}
	cmd.Println(o.deps.Catalog.RenderOr("session.joined",
		map[string]string{"GameID": s.GameID(), "PlayerID": s.PlayerID()},
		"game "+s.GameID()))
	return s, nil
}
