package workers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aethex-api/services"
)

func TestDispatcherDeliversDiscordEmbed(t *testing.T) {
	got := make(chan DiscordWebhookRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body DiscordWebhookRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		got <- body
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewWebhookDispatcher(srv.URL, 4)
	d.Start(ctx)
	d.Publish(services.StaffAlert{
		Kind:    "application",
		Title:   "New contributor application",
		Summary: "Ada Lovelace",
		Fields:  [][2]string{{"Email", "ada@example.com"}, {"Skill", ""}},
	})

	select {
	case body := <-got:
		if len(body.Embeds) != 1 {
			t.Fatalf("embeds = %d, want 1", len(body.Embeds))
		}
		e := body.Embeds[0]
		if e.Color != ColorPurple {
			t.Errorf("color = %d, want %d", e.Color, ColorPurple)
		}
		if e.Description != "Ada Lovelace" {
			t.Errorf("description = %q", e.Description)
		}
		if len(e.Fields) != 1 || e.Fields[0].Name != "Email" {
			t.Errorf("fields = %+v, want only Email (empty values skipped)", e.Fields)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("webhook was not delivered")
	}
}

func TestPublishDropsWhenQueueFull(t *testing.T) {
	d := NewWebhookDispatcher("http://127.0.0.1:0", 1)
	d.Publish(services.StaffAlert{Kind: "donation", Title: "one"})

	done := make(chan struct{})
	go func() {
		d.Publish(services.StaffAlert{Kind: "donation", Title: "two"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
	if len(d.queue) != 1 {
		t.Fatalf("queue len = %d, want 1", len(d.queue))
	}
}
