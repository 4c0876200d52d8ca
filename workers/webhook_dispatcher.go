// workers/webhook_dispatcher.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"aethex-api/services"
	"aethex-api/utils"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

const (
	ColorPurple = 7506394  // #7289DA - applications
	ColorGold   = 16766720 // #FFD700 - donations
	ColorGrey   = 9807270  // #95A5A6 - anything else

	WebhookUsername = "AeThex Staff Alerts"
)

// WebhookDispatcher posts staff alerts to a Discord webhook from a single
// background goroutine. Publish never blocks: when the queue is full the
// alert is dropped and logged.
type WebhookDispatcher struct {
	webhookURL string
	queue      chan services.StaffAlert
	httpClient *http.Client
	now        func() time.Time
}

func NewWebhookDispatcher(webhookURL string, buffer int) *WebhookDispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &WebhookDispatcher{
		webhookURL: webhookURL,
		queue:      make(chan services.StaffAlert, buffer),
		httpClient: utils.HTTPClient,
		now:        time.Now,
	}
}

func (w *WebhookDispatcher) Publish(a services.StaffAlert) {
	select {
	case w.queue <- a:
	default:
		log.Printf("⚠️ [WEBHOOK] queue full, dropping %s alert %q", a.Kind, a.Title)
	}
}

func (w *WebhookDispatcher) Start(ctx context.Context) {
	log.Println("🔁 Starting staff alert webhook dispatcher…")
	go w.run(ctx)
}

func (w *WebhookDispatcher) run(ctx context.Context) {
	for {
		select {
		case a := <-w.queue:
			if err := w.send(ctx, a); err != nil {
				log.Printf("[WEBHOOK] ❌ dropped %s alert: %v", a.Kind, err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Webhook dispatcher stopped")
			return
		}
	}
}

func (w *WebhookDispatcher) send(ctx context.Context, a services.StaffAlert) error {
	body, err := json.Marshal(w.payload(a))
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, msg)
	}
	log.Printf("[WEBHOOK] ✅ delivered %s alert %q", a.Kind, a.Title)
	return nil
}

func (w *WebhookDispatcher) payload(a services.StaffAlert) DiscordWebhookRequest {
	color := ColorGrey
	icon := "🔔"
	switch a.Kind {
	case "application":
		color, icon = ColorPurple, "📨"
	case "donation":
		color, icon = ColorGold, "💜"
	}

	fields := make([]DiscordWebhookField, 0, len(a.Fields))
	for _, f := range a.Fields {
		if f[1] == "" {
			continue
		}
		fields = append(fields, DiscordWebhookField{Name: f[0], Value: f[1], Inline: true})
	}

	return DiscordWebhookRequest{
		Username: WebhookUsername,
		Embeds: []DiscordEmbed{{
			Title:       icon + " " + a.Title,
			Description: a.Summary,
			Color:       color,
			Fields:      fields,
			Footer:      &DiscordFooter{Text: "AeThex"},
			Timestamp:   w.now().UTC().Format(time.RFC3339),
		}},
	}
}
