package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"sync"

	"github.com/park285/cheese-board/internal/board"
	"github.com/remeh/sizedwaitgroup"
	"go.uber.org/zap"
)

// AssetDir is where piece images live, both on the server and on disk.
const AssetDir = "images"

// Fetcher returns the raw bytes of an asset path such as "images/wRook.png".
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// FSFetcher reads assets from a file system.
type FSFetcher struct{ FS fs.FS }

func (f FSFetcher) Fetch(_ context.Context, name string) ([]byte, error) {
	return fs.ReadFile(f.FS, name)
}

type loadState int

const (
	statePending loadState = iota + 1
	stateLoaded
	stateMissing
)

type pieceEntry struct {
	state loadState
	img   image.Image
}

// AssetLoader fetches piece images in the background. Every id is fetched at
// most once; failures are remembered so a broken asset is not retried each
// frame.
type AssetLoader struct {
	fetch  Fetcher
	size   int
	onLoad func()
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	cache map[board.PieceID]*pieceEntry
	swg   sizedwaitgroup.SizedWaitGroup
	wg    sync.WaitGroup
}

type LoaderOption func(*AssetLoader)

// WithOnLoad registers a callback fired after each successful load.
func WithOnLoad(fn func()) LoaderOption { return func(l *AssetLoader) { l.onLoad = fn } }

func WithLoaderLogger(logger *zap.Logger) LoaderOption {
	return func(l *AssetLoader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithConcurrency bounds the number of simultaneous fetches.
func WithConcurrency(n int) LoaderOption {
	return func(l *AssetLoader) {
		if n > 0 {
			l.swg = sizedwaitgroup.New(n)
		}
	}
}

// NewAssetLoader rasterizes vector assets at size×size pixels.
func NewAssetLoader(fetch Fetcher, size int, opts ...LoaderOption) *AssetLoader {
	ctx, cancel := context.WithCancel(context.Background())
	l := &AssetLoader{
		fetch:  fetch,
		size:   size,
		logger: zap.NewNop(),
		ctx:    ctx,
		cancel: cancel,
		cache:  make(map[board.PieceID]*pieceEntry),
		swg:    sizedwaitgroup.New(4),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetOnLoad replaces the load callback. Used when the loader is built before
// the renderer it should wake up.
func (l *AssetLoader) SetOnLoad(fn func()) {
	l.mu.Lock()
	l.onLoad = fn
	l.mu.Unlock()
}

// Piece returns the cached image for id, starting a background load on the
// first request.
func (l *AssetLoader) Piece(id board.PieceID) (image.Image, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.cache[id]; ok {
		return e.img, e.state == stateLoaded
	}
	l.cache[id] = &pieceEntry{state: statePending}
	l.wg.Add(1)
	go l.load(id)
	return nil, false
}

// Wait blocks until all started loads have finished.
func (l *AssetLoader) Wait() { l.wg.Wait() }

// Close abandons pending loads.
func (l *AssetLoader) Close() {
	l.cancel()
	l.wg.Wait()
}

func (l *AssetLoader) load(id board.PieceID) {
	defer l.wg.Done()
	l.swg.Add()
	defer l.swg.Done()

	img, err := l.fetchImage(id)

	l.mu.Lock()
	e := l.cache[id]
	if err != nil {
		e.state = stateMissing
	} else {
		e.state, e.img = stateLoaded, img
	}
	onLoad := l.onLoad
	l.mu.Unlock()

	if err != nil {
		l.logger.Warn("piece_asset_missing", zap.String("piece", string(id)), zap.Error(err))
		return
	}
	l.logger.Debug("piece_asset_loaded", zap.String("piece", string(id)))
	if onLoad != nil {
		onLoad()
	}
}

// fetchImage tries <id>.png first and falls back to <id>.svg.
func (l *AssetLoader) fetchImage(id board.PieceID) (image.Image, error) {
	if l.ctx.Err() != nil {
		return nil, l.ctx.Err()
	}
	raster := path.Join(AssetDir, string(id)+".png")
	data, err := l.fetch.Fetch(l.ctx, raster)
	if err == nil {
		img, _, derr := image.Decode(bytes.NewReader(data))
		if derr != nil {
			return nil, fmt.Errorf("decode %s: %w", raster, derr)
		}
		return img, nil
	}
	vector := path.Join(AssetDir, string(id)+".svg")
	svg, serr := l.fetch.Fetch(l.ctx, vector)
	if serr != nil {
		return nil, fmt.Errorf("read piece asset %s: %w", raster, err)
	}
	return rasterizeSVG(svg, l.size)
}
