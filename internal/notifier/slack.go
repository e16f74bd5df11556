package notifier

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"

	"StockScreener/internal/httpx"
)

// SlackLimit is the practical text limit of one webhook message.
const SlackLimit = 3000

// SlackNotifier posts to a Slack incoming webhook. Messages are formatted
// as Telegram HTML and converted to mrkdwn before sending.
type SlackNotifier struct {
	WebhookURL string
	Client     *http.Client
}

// NewSlackNotifier creates a webhook notifier with optional proxy support.
func NewSlackNotifier(webhookURL, proxyURL string) *SlackNotifier {
	return &SlackNotifier{
		WebhookURL: webhookURL,
		Client:     httpx.NewClient(proxyURL, httpx.DefaultTimeout),
	}
}

func (s *SlackNotifier) Name() string { return "slack" }

func (s *SlackNotifier) Send(ctx context.Context, text string) error {
	for _, chunk := range Chunk(HTMLToMrkdwn(text), SlackLimit) {
		if err := s.post(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (s *SlackNotifier) post(ctx context.Context, text string) error {
	if err := postJSON(ctx, s.Client, s.WebhookURL, map[string]any{"text": text, "mrkdwn": true}); err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	return nil
}

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var mrkdwnReplacer = strings.NewReplacer(
	"<b>", "*", "</b>", "*",
	"<i>", "_", "</i>", "_",
	"<code>", "`", "</code>", "`",
	"<pre>", "```", "</pre>", "```",
)

// HTMLToMrkdwn converts the small HTML subset used by the formatters to
// Slack mrkdwn. Slack only understands the &amp; &lt; &gt; entities.
func HTMLToMrkdwn(s string) string {
	return slackEscaper.Replace(html.UnescapeString(mrkdwnReplacer.Replace(s)))
}

var tagStripper = strings.NewReplacer(
	"<b>", "", "</b>", "",
	"<i>", "", "</i>", "",
	"<code>", "", "</code>", "",
	"<pre>", "", "</pre>", "",
)

// HTMLToPlain drops the formatter markup, for terminal output.
func HTMLToPlain(s string) string {
	return html.UnescapeString(tagStripper.Replace(s))
}
