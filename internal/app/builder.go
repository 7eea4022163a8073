// Package app wires the client's components from configuration.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/boardsync"
	"github.com/park285/cheese-board/internal/chessapi"
	"github.com/park285/cheese-board/internal/config"
	"github.com/park285/cheese-board/internal/gamelist"
	"github.com/park285/cheese-board/internal/grid"
	"github.com/park285/cheese-board/internal/input"
	"github.com/park285/cheese-board/internal/journal"
	"github.com/park285/cheese-board/internal/mirror"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/render"
	"github.com/park285/cheese-board/internal/session"
	"github.com/park285/cheese-board/internal/view"
	"go.uber.org/zap"
)

type Deps struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	API      *chessapi.Client
	Catalog  *msgcat.Catalog
	Model    *board.Model
	Mapper   grid.Mapper
	Assets   *render.AssetLoader
	Renderer *render.Renderer
	Capture  *input.Capture

	// Optional sinks, nil when not configured.
	Mirror  *mirror.Store
	Journal *journal.Repository
}

func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	headers := func() map[string]string {
		h := map[string]string{}
		if cfg.PlayerName != "" {
			h["X-Player-Name"] = cfg.PlayerName
		}
		return h
	}
	apiOpts := []chessapi.Option{
		chessapi.WithTimeout(cfg.HTTPTimeout()),
		chessapi.WithRetry(cfg.RetryMax),
		chessapi.WithHeaderProvider(headers),
	}
	api, err := chessapi.NewClient(cfg.ServerURL, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("init chess api: %w", err)
	}

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	fetcher, err := assetFetcher(cfg, api, apiOpts)
	if err != nil {
		return nil, err
	}

	mapper := grid.NewMapper(cfg.GridSize)
	model := board.NewModel()
	assets := render.NewAssetLoader(fetcher, mapper.CellSize(), render.WithLoaderLogger(logger))
	renderer := render.NewRenderer(model, mapper, assets)
	assets.SetOnLoad(renderer.RequestRedraw)

	d := &Deps{
		Config:   cfg,
		Logger:   logger,
		API:      api,
		Catalog:  cat,
		Model:    model,
		Mapper:   mapper,
		Assets:   assets,
		Renderer: renderer,
		Capture:  input.NewCapture(model, mapper),
	}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		m, err := mirror.Dial(ctx, cfg.RedisURL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("init snapshot mirror: %w", err)
		}
		d.Mirror = m
	}
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		repo, err := journal.NewRepository(cfg.DatabaseURL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("init move journal: %w", err)
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = repo.Close()
			d.Close()
			return nil, fmt.Errorf("journal schema: %w", err)
		}
		d.Journal = repo
	}
	return d, nil
}

func assetFetcher(cfg *config.AppConfig, api *chessapi.Client, opts []chessapi.Option) (render.Fetcher, error) {
	if dir := strings.TrimSpace(cfg.AssetDir); dir != "" {
		return render.FSFetcher{FS: os.DirFS(dir)}, nil
	}
	assetURL := strings.TrimRight(strings.TrimSpace(cfg.AssetURL), "/")
	if assetURL == "" || assetURL == api.BaseURL() {
		return api, nil
	}
	c, err := chessapi.NewClient(assetURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("init asset client: %w", err)
	}
	return c, nil
}

// StartSession joins an existing game when either id is given, in which case
// both are required. With neither it asks the server for a new game.
func (d *Deps) StartSession(ctx context.Context, gameID, playerID string) (session.Session, error) {
	if strings.TrimSpace(gameID) != "" || strings.TrimSpace(playerID) != "" {
		return session.New(gameID, playerID)
	}
	resp, err := d.API.NewGame(ctx)
	if err != nil {
		return session.Session{}, fmt.Errorf("new game: %w", err)
	}
	s, err := session.FromNewGame(resp)
	if err != nil {
		return session.Session{}, err
	}
	d.Logger.Info("session_started",
		zap.String("game_id", s.GameID()),
		zap.String("player_id", s.PlayerID()),
		zap.String("colour", resp.Colour),
	)
	return s, nil
}

// Sync builds the board sync client for sess with the configured sinks.
func (d *Deps) Sync(sess session.Session) *boardsync.Client {
	opts := []boardsync.Option{boardsync.WithLogger(d.Logger)}
	if d.Mirror != nil {
		opts = append(opts, boardsync.WithSnapshotSink(d.Mirror))
	}
	if d.Journal != nil {
		opts = append(opts, boardsync.WithMoveRecorder(d.Journal))
	}
	return boardsync.New(d.API, d.Model, d.Renderer, sess, opts...)
}

// Games builds the ongoing-games watcher.
func (d *Deps) Games() *gamelist.Watcher {
	return gamelist.New(d.API, d.Catalog,
		gamelist.WithLogger(d.Logger),
		gamelist.WithInterval(d.Config.ListInterval()),
	)
}

// Controller builds the click controller that submits through sc.
func (d *Deps) Controller(sc *boardsync.Client) *view.Controller {
	return view.NewController(d.Capture, d.Renderer, sc,
		view.WithLogger(d.Logger),
		view.WithSubmitTimeout(2*d.Config.HTTPTimeout()),
	)
}

func (d *Deps) Close() {
	if d == nil {
		return
	}
	if d.Assets != nil {
		d.Assets.Close()
	}
	if d.Mirror != nil {
		_ = d.Mirror.Close()
	}
	if d.Journal != nil {
		_ = d.Journal.Close()
	}
}
