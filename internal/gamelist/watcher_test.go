package gamelist

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/park285/cheese-board/internal/chessapi"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/session"
	"github.com/park285/cheese-board/internal/stubserver"
	"github.com/park285/cheese-board/pkg/chessdto"
)

func clientAs(t *testing.T, baseURL, name string) *chessapi.Client {
	t.Helper()
	c, err := chessapi.NewClient(baseURL, chessapi.WithRetry(1), chessapi.WithHeaderProvider(func() map[string]string {
		return map[string]string{"X-Player-Name": name}
	}))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestRefreshAgainstStub(t *testing.T) {
	stub := stubserver.New()
	srv := httptest.NewServer(stub)
	defer srv.Close()
	ctx := context.Background()

	alice := clientAs(t, srv.URL, "alice")
	bob := clientAs(t, srv.URL, "bob")
	a1, _ := alice.NewGame(ctx)
	if _, err := bob.NewGame(ctx); err != nil {
		t.Fatalf("bob NewGame: %v", err)
	}
	a2, _ := alice.NewGame(ctx) // opens a second game, still waiting

	w := New(alice, msgcat.Default())
	w.SetPlayer(a1.PlayerID.String(), "alice")
	if err := w.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	got := w.Entries()
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %+v", got)
	}
	if !got[0].YourTurn || got[0].Opponent != "bob" {
		t.Fatalf("unexpected entry %+v", got[0])
	}

	w.SetPlayer(a2.PlayerID.String(), "alice")
	_ = w.Refresh(ctx)
	got = w.Entries()
	if len(got) != 1 || got[0].Message != "Waiting for black player to join." {
		t.Fatalf("unexpected waiting entry %+v", got)
	}

	stub.Finish(a2.GameID.String())
	_ = w.Refresh(ctx)
	if len(w.Entries()) != 0 {
		t.Fatalf("finished game still listed")
	}
}

func TestDescribePerspective(t *testing.T) {
	w := New(nil, nil)
	g := chessdto.GameSummary{GameID: "7", GameStatus: chessdto.StatusInProgress, WhitePlayerName: "alice", BlackPlayerName: "bob", CurrentTurn: "WHITE"}

	e := w.Describe(g, "alice")
	if !e.YourTurn || e.Message != "It's your turn against bob!" {
		t.Fatalf("white view: %+v", e)
	}
	e = w.Describe(g, "bob")
	if e.YourTurn || e.Message != "Waiting for alice to make their move." {
		t.Fatalf("black view: %+v", e)
	}

	g.WhitePlayerName = ""
	e = w.Describe(g, "bob")
	if e.Message != "Waiting for white player to join." {
		t.Fatalf("waiting view: %+v", e)
	}
}

func TestDescribeEmptyTurnIsMine(t *testing.T) {
	w := New(nil, nil)
	g := chessdto.GameSummary{GameID: "8", GameStatus: chessdto.StatusInProgress, WhitePlayerName: "alice", BlackPlayerName: "bob"}

	for _, me := range []string{"alice", "bob"} {
		e := w.Describe(g, me)
		if !e.YourTurn || !strings.HasPrefix(e.Message, "It's your turn against ") {
			t.Fatalf("%s with empty turn: %+v", me, e)
		}
	}

	g.CurrentTurn = "BLACK"
	if e := w.Describe(g, "alice"); e.YourTurn {
		t.Fatalf("alice should wait on black: %+v", e)
	}
}

func TestTruncateName(t *testing.T) {
	if got := TruncateName("short"); got != "short" {
		t.Fatalf("got %q", got)
	}
	exact := strings.Repeat("x", 20)
	if got := TruncateName(exact); got != exact {
		t.Fatalf("20 runes should stay: %q", got)
	}
	long := strings.Repeat("가", 25)
	if got := TruncateName(long); got != strings.Repeat("가", 20)+"..." {
		t.Fatalf("got %q", got)
	}
}

type countingLister struct{ n atomic.Int32 }

func (l *countingLister) AllGames(context.Context, string) ([]chessdto.GameSummary, error) {
	l.n.Add(1)
	return nil, errors.New("down")
}

func TestRefreshSkipsWithoutPlayer(t *testing.T) {
	l := &countingLister{}
	w := New(l, nil)
	if err := w.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if l.n.Load() != 0 {
		t.Fatalf("request sent without player id")
	}
	w.SetPlayer("3", "")
	if err := w.Refresh(context.Background()); err == nil {
		t.Fatalf("expected lister error")
	}
}

func TestSelectBuildsSession(t *testing.T) {
	w := New(nil, nil)
	if _, err := w.Select("5"); !errors.Is(err, session.ErrMissingPlayerID) {
		t.Fatalf("expected ErrMissingPlayerID, got %v", err)
	}
	w.SetPlayer("9", "me")
	s, err := w.Select("5")
	if err != nil || s.GameID() != "5" || s.PlayerID() != "9" {
		t.Fatalf("Select = %+v, %v", s, err)
	}
}

func TestStartStop(t *testing.T) {
	l := &countingLister{}
	w := New(l, nil, WithInterval(5*time.Millisecond))
	w.SetPlayer("1", "me")
	if !w.Start(context.Background()) {
		t.Fatalf("Start returned false")
	}
	deadline := time.Now().Add(2 * time.Second)
	for l.n.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("watcher did not repeat")
		}
		time.Sleep(time.Millisecond)
	}
	w.Stop()
	w.Wait()
	n := l.n.Load()
	time.Sleep(20 * time.Millisecond)
	if l.n.Load() != n {
		t.Fatalf("refresh after Stop")
	}
}
