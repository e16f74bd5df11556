// Package notifier publishes screening reports to chat channels.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// TelegramLimit is the maximum message length Telegram accepts.
const TelegramLimit = 4096

// Notifier delivers a pre-formatted message.
type Notifier interface {
	Send(ctx context.Context, text string) error
	Name() string
}

// Multi fans a message out to every notifier. It returns the joined errors
// of the notifiers that failed.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, text string) error {
	var errs []error
	for _, n := range m {
		if err := n.Send(ctx, text); err != nil {
			log.Error().Err(err).Str("notifier", n.Name()).Msg("send failed")
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Name() string {
	names := make([]string, len(m))
	for i, n := range m {
		names[i] = n.Name()
	}
	return "multi(" + strings.Join(names, ",") + ")"
}

// LogNotifier writes messages to the log instead of a chat. Used for dry runs.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, text string) error {
	log.Info().Str("notifier", "log").Msg(text)
	return nil
}

func (LogNotifier) Name() string { return "log" }

// Chunk splits text into pieces of at most limit bytes, preferring line
// boundaries. A single line longer than limit is hard-split.
func Chunk(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}
	var (
		chunks []string
		cur    strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			flush()
			cut := safeCut(line, limit)
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if cur.Len()+len(line) > limit {
			flush()
		}
		cur.WriteString(line)
	}
	flush()
	return chunks
}

// safeCut returns the largest index <= limit that does not split a UTF-8
// sequence.
func safeCut(s string, limit int) int {
	cut := limit
	for cut > 0 && cut < len(s) && s[cut]&0xC0 == 0x80 {
		cut--
	}
	if cut == 0 {
		return limit
	}
	return cut
}

// postJSON posts payload as JSON and fails on any non-200 reply.
func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, respBody)
	}
	return nil
}
