package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cliphost/cliphost/models"
	"github.com/cliphost/cliphost/utils"
)

const dispatchTimeout = 10 * time.Second

// Notifier delivers upload notifications to a chat webhook endpoint.
// Delivery is best-effort: failures are logged and never retried, and a nil
// or unconfigured Notifier is a no-op.
type Notifier struct {
	URL      string
	SendLink bool
	Client   *http.Client
}

// New returns a Notifier posting to url. An empty url disables delivery.
func New(url string, sendLink bool) *Notifier {
	return &Notifier{
		URL:      url,
		SendLink: sendLink,
		Client:   &http.Client{Timeout: dispatchTimeout},
	}
}

// Event describes a completed upload for the outbound notification.
type Event struct {
	FileURL    string
	MimeType   string
	Size       int64
	DateFolder string
	Player     *models.PlayerMetadata
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type embed struct {
	Title     string       `json:"title"`
	URL       string       `json:"url,omitempty"`
	Fields    []embedField `json:"fields,omitempty"`
	Timestamp string       `json:"timestamp,omitempty"`
}

type message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds,omitempty"`
}

// Dispatch fires the notification from a detached goroutine so the caller's
// response path is never blocked by webhook delivery.
func (n *Notifier) Dispatch(ev Event) {
	if n == nil || n.URL == "" {
		return
	}
	go func() {
		if err := n.Send(context.Background(), ev); err != nil {
			utils.Sugar.Errorf("webhook delivery failed: %v", err)
		}
	}()
}

// Send delivers the rich embed message and, when configured, a plain link
// message. It blocks until delivery finishes or times out.
func (n *Notifier) Send(ctx context.Context, ev Event) error {
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	if err := n.post(ctx, buildEmbed(ev)); err != nil {
		return err
	}
	if n.SendLink {
		return n.post(ctx, message{Content: ev.FileURL})
	}
	return nil
}

func buildEmbed(ev Event) message {
	fields := []embedField{
		{Name: "Type", Value: ev.MimeType, Inline: true},
		{Name: "Size", Value: formatSize(ev.Size), Inline: true},
		{Name: "Folder", Value: ev.DateFolder, Inline: true},
	}
	if ev.Player != nil && ev.Player.Name != "" {
		fields = append(fields, embedField{
			Name:  "Player",
			Value: fmt.Sprintf("%s (%s)", ev.Player.Name, ev.Player.Identifier),
		})
	}
	return message{
		Embeds: []embed{{
			Title:     "New file uploaded",
			URL:       ev.FileURL,
			Fields:    fields,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}},
	}
}

func (n *Notifier) post(ctx context.Context, msg message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

func formatSize(size int64) string {
	const mb = 1024 * 1024
	if size >= mb {
		return fmt.Sprintf("%.2f MB", float64(size)/mb)
	}
	return fmt.Sprintf("%.1f KB", float64(size)/1024)
}
