package chessdto

import (
	"encoding/json"
	"testing"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var resp NewGameResponse
	if err := json.Unmarshal([]byte(`{"gameId":42,"playerId":"abc"}`), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.GameID != "42" || resp.PlayerID != "abc" {
		t.Fatalf("unexpected ids %+v", resp)
	}
	out, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"gameId":42,"playerId":"abc"}` {
		t.Fatalf("unexpected json %s", out)
	}
}

func TestAPIErrorRetryable(t *testing.T) {
	if !(&APIError{Status: 503}).Retryable() {
		t.Fatalf("503 should be retryable")
	}
	if (&APIError{Status: 400}).Retryable() {
		t.Fatalf("400 should not be retryable")
	}
}
