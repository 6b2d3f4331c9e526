package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/cliphost/cliphost/models"
	"github.com/cliphost/cliphost/utils"
)

func init() {
	utils.Logger = zap.NewNop()
	utils.Sugar = utils.Logger.Sugar()
}

func TestSendDeliversEmbed(t *testing.T) {
	var got message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("payload is not valid JSON: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := New(srv.URL, false)
	ev := Event{
		FileURL:    "https://clips.example.com/uploads/2025-10-16/abc.webm",
		MimeType:   "video/webm",
		Size:       4 << 20,
		DateFolder: "2025-10-16",
		Player:     &models.PlayerMetadata{Identifier: "license:a1", Name: "Dara"},
	}
	if err := n.Send(context.Background(), ev); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(got.Embeds) != 1 {
		t.Fatalf("expected one embed, got %d", len(got.Embeds))
	}
	embed := got.Embeds[0]
	if embed.URL != ev.FileURL {
		t.Errorf("embed url mismatch: %s", embed.URL)
	}
	if len(embed.Fields) != 4 {
		t.Errorf("expected type/size/folder/player fields, got %v", embed.Fields)
	}
}

func TestSendLinkMessage(t *testing.T) {
	var payloads []message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var msg message
		_ = json.Unmarshal(body, &msg)
		payloads = append(payloads, msg)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := New(srv.URL, true)
	ev := Event{FileURL: "https://clips.example.com/uploads/2025-10-16/abc.webm", MimeType: "video/webm", DateFolder: "2025-10-16"}
	if err := n.Send(context.Background(), ev); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(payloads) != 2 {
		t.Fatalf("expected embed plus link message, got %d payloads", len(payloads))
	}
	if payloads[1].Content != ev.FileURL {
		t.Errorf("link message content mismatch: %s", payloads[1].Content)
	}
}

func TestSendReportsRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := New(srv.URL, false)
	if err := n.Send(context.Background(), Event{FileURL: "x"}); err == nil {
		t.Error("expected an error for a 500 response")
	}
}

func TestDispatchNoopWithoutURL(t *testing.T) {
	// Must not panic on a nil or unconfigured notifier.
	var n *Notifier
	n.Dispatch(Event{})
	New("", false).Dispatch(Event{})
}
