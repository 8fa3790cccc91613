package telegram_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jdelaire/sentinelbot/adapters/telegram"
	"github.com/jdelaire/sentinelbot/core"
)

func TestFetchMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": []map[string]any{
				{
					"update_id": 100,
					"message": map[string]any{
						"message_id": 1,
						"from":       map[string]any{"id": 42},
						"chat":       map[string]any{"id": 123, "type": "private"},
						"date":       time.Now().Unix(),
						"text":       "/status",
						"entities":   []map[string]any{{"type": "bot_command", "offset": 0, "length": 7}},
					},
				},
			},
		})
	}))
	defer srv.Close()

	c := telegram.New("test-token").WithBaseURL(srv.URL)
	updates, err := c.Fetch(context.Background(), 0, time.Second)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1", len(updates))
	}
	u := updates[0]
	if u.ID != 100 || u.Kind != core.KindMessage {
		t.Errorf("update = (%d, %s), want (100, message)", u.ID, u.Kind)
	}
	if u.Message.Chat.ID != 123 || u.Message.From.ID != 42 {
		t.Errorf("chat/from = %d/%d, want 123/42", u.Message.Chat.ID, u.Message.From.ID)
	}
	if cmd, _ := u.Message.Command(); cmd != "/status" {
		t.Errorf("command = %q, want /status", cmd)
	}
	if len(u.Raw) == 0 {
		t.Error("raw update not preserved")
	}
}

func TestFetchOffsetFromCursor(t *testing.T) {
	var gotOffset, gotTimeout string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOffset = r.URL.Query().Get("offset")
		gotTimeout = r.URL.Query().Get("timeout")
		w.Write([]byte(`{"ok":true,"result":[]}`))
	}))
	defer srv.Close()

	c := telegram.New("tok").WithBaseURL(srv.URL)
	updates, err := c.Fetch(context.Background(), 200, 2*time.Second)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(updates) != 0 {
		t.Errorf("got %d updates, want 0", len(updates))
	}
	if gotOffset != "201" {
		t.Errorf("offset = %q, want 201", gotOffset)
	}
	if gotTimeout != "2" {
		t.Errorf("timeout = %q, want 2", gotTimeout)
	}
}

func TestFetchKinds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true,"result":[
			{"update_id":1,"edited_message":{"message_id":1,"chat":{"id":1},"date":0,"text":"x"}},
			{"update_id":2,"callback_query":{"id":"abc"}},
			{"update_id":3,"my_chat_member":{}},
			{"update_id":4,"message":{"message_id":9,"chat":{"id":1},"date":0,"pinned_message":{"message_id":5,"chat":{"id":1},"date":0}}}
		]}`)
	}))
	defer srv.Close()

	updates, err := telegram.New("tok").WithBaseURL(srv.URL).Fetch(context.Background(), 0, time.Second)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := []core.UpdateKind{core.KindEditedMessage, core.KindCallbackQuery, core.KindOther, core.KindMessage}
	if len(updates) != len(want) {
		t.Fatalf("got %d updates, want %d", len(updates), len(want))
	}
	for i, k := range want {
		if updates[i].Kind != k {
			t.Errorf("updates[%d].Kind = %s, want %s", i, updates[i].Kind, k)
		}
	}
	if updates[3].Message.PinnedMessage == nil || updates[3].Message.PinnedMessage.ID != 5 {
		t.Error("pinned message not decoded")
	}
}

func TestFetchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"ok":false,"error_code":502,"description":"Bad Gateway"}`))
	}))
	defer srv.Close()

	c := telegram.New("tok").WithBaseURL(srv.URL)
	_, err := c.Fetch(context.Background(), 0, time.Second)
	var terr *core.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v, want *core.TransportError", err)
	}
	if terr.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", terr.StatusCode)
	}
	if !strings.Contains(string(c.LastResponse()), "Bad Gateway") {
		t.Errorf("last response = %q, want raw error body", c.LastResponse())
	}
}

func TestFetchNetworkError(t *testing.T) {
	c := telegram.New("tok").WithBaseURL("http://127.0.0.1:1")
	_, err := c.Fetch(context.Background(), 0, time.Second)
	var terr *core.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v, want *core.TransportError", err)
	}
}

func TestFetchNetworkErrorHidesRequestURL(t *testing.T) {
	c := telegram.New("SECRET123:tok").WithBaseURL("http://127.0.0.1:1")

	_, err41 := c.Fetch(context.Background(), 41, time.Second)
	_, err99 := c.Fetch(context.Background(), 99, time.Second)
	if err41 == nil || err99 == nil {
		t.Fatalf("errors = %v, %v, want network failures", err41, err99)
	}

	for _, text := range []string{err41.Error(), core.Signature(err41)} {
		if strings.Contains(text, "SECRET123") {
			t.Errorf("error leaks bot token: %q", text)
		}
		if strings.Contains(text, "offset=") {
			t.Errorf("error embeds poll offset: %q", text)
		}
	}
	if core.Signature(err41) != core.Signature(err99) {
		t.Errorf("signature depends on cursor:\n%s\n%s", core.Signature(err41), core.Signature(err99))
	}
}

func TestFetchContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	c := telegram.New("tok").WithBaseURL(srv.URL)
	go func() {
		_, err := c.Fetch(ctx, 0, 30*time.Second)
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("fetch returned nil error after cancellation")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not stop after context cancellation")
	}
}
