package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/park285/cheese-board/internal/config"
	"github.com/park285/cheese-board/internal/session"
	"github.com/park285/cheese-board/internal/stubserver"
)

func testConfig(serverURL string) *config.AppConfig {
	return &config.AppConfig{
		ServerURL:      serverURL,
		AssetURL:       serverURL,
		PlayerName:     "tester",
		PollIntervalMs: 5000,
		ListIntervalMs: 2000,
		GridSize:       8,
		FPS:            60,
		HTTPTimeoutMs:  2000,
		RetryMax:       1,
	}
}

func TestNewGamePollAndAssets(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	stub := stubserver.New(stubserver.WithAssets(fstest.MapFS{"images/wRook.png": {Data: buf.Bytes()}}))
	srv := httptest.NewServer(stub)
	defer srv.Close()

	ctx := context.Background()
	d, err := New(ctx, testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	sess, err := d.StartSession(ctx, "", "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	sc := d.Sync(sess)
	if err := sc.PollOnce(ctx); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if id, _ := d.Model.Get("A1"); id != "wRook" {
		t.Fatalf("A1 = %q", id)
	}

	d.Assets.Piece("wRook")
	d.Assets.Wait()
	if _, ok := d.Assets.Piece("wRook"); !ok {
		t.Fatalf("piece asset not fetched over http")
	}
	if stub.Requests("/images/wRook.png") != 1 {
		t.Fatalf("expected one asset request, got %d", stub.Requests("/images/wRook.png"))
	}

	list := d.Games()
	list.SetPlayer(sess.PlayerID(), d.Config.PlayerName)
	if err := list.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := list.Entries(); len(got) != 1 || got[0].Message != "Waiting for black player to join." {
		t.Fatalf("entries %+v", got)
	}
}

func TestStartSessionWithIDs(t *testing.T) {
	d, err := New(context.Background(), testConfig("http://127.0.0.1:1"), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()
	s, err := d.StartSession(context.Background(), "4", "9")
	if err != nil || s.GameID() != "4" || s.PlayerID() != "9" {
		t.Fatalf("StartSession = %+v, %v", s, err)
	}
	if _, err := d.StartSession(context.Background(), "4", ""); err == nil {
		t.Fatalf("expected error for missing player id")
	}
	// A lone player id must not fall through to a new-game request.
	_, err = d.StartSession(context.Background(), "", "9")
	if !errors.Is(err, session.ErrMissingGameID) {
		t.Fatalf("expected session error for missing game id, got %v", err)
	}
}

func TestMirrorWired(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	stub := stubserver.New()
	srv := httptest.NewServer(stub)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"
	ctx := context.Background()
	d, err := New(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()
	sess, _ := d.StartSession(ctx, "", "")
	if err := d.Sync(sess).PollOnce(ctx); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	snap, err := d.Mirror.Load(ctx, sess.GameID())
	if err != nil || snap == nil || len(snap.Positions) != 32 {
		t.Fatalf("mirror snapshot %+v, %v", snap, err)
	}
}

func TestMissingRedisFails(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.RedisURL = "redis://127.0.0.1:1/0"
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for unreachable redis")
	}
}
