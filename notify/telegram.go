package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"cow-notifier/render"
)

// maxMessageLen is the provider's per-message character limit.
const maxMessageLen = 4096

// APIError is a rejection from the Telegram Bot API.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API %d: %s", e.Code, e.Description)
}

// Telegram sends messages through the Telegram Bot API.
type Telegram struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiURL     string
}

// NewTelegram creates a Telegram sender. baseURL is normally
// https://api.telegram.org.
func NewTelegram(httpClient *http.Client, baseURL, token string, logger *slog.Logger) *Telegram {
	return &Telegram{
		httpClient: httpClient,
		logger:     logger,
		apiURL:     fmt.Sprintf("%s/bot%s", strings.TrimSuffix(baseURL, "/"), token),
	}
}

// Send transmits a MarkdownV2 text, split into provider-sized chunks.
// When the API rejects a chunk's markup, the chunk is degraded to plain
// text with the escape codec's recovery path and sent once more.
func (t *Telegram) Send(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range chunks(text, maxMessageLen) {
		err := t.sendChunk(ctx, chatID, chunk, true)
		if err == nil {
			continue
		}
		var ae *APIError
		if errors.As(err, &ae) && ae.Code == http.StatusBadRequest {
			t.logger.Warn("Markup rejected, sending plain-text fallback",
				"chat_id", chatID,
				"error", err)
			if err := t.sendChunk(ctx, chatID, render.Unescape(chunk), false); err != nil {
				return fmt.Errorf("plain-text fallback: %w", err)
			}
			continue
		}
		return err
	}
	return nil
}

func (t *Telegram) sendChunk(ctx context.Context, chatID int64, text string, markdown bool) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if markdown {
		payload["parse_mode"] = "MarkdownV2"
		payload["disable_web_page_preview"] = true
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL+"/sendMessage", bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("create request: %w", err)
			}
			req.Header.Set("Content-Type", "application/json")

			start := time.Now()
			resp, err := t.httpClient.Do(req)
			if err != nil {
				t.logger.Warn("Telegram request failed, will retry",
					"chat_id", chatID,
					"duration_ms", time.Since(start).Milliseconds(),
					"error", err)
				return err
			}
			defer func() {
				if closeErr := resp.Body.Close(); closeErr != nil {
					t.logger.Warn("Failed to close response body", "error", closeErr)
				}
			}()

			var result struct {
				OK          bool   `json:"ok"`
				ErrorCode   int    `json:"error_code"`
				Description string `json:"description"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			if !result.OK {
				return &APIError{Code: result.ErrorCode, Description: result.Description}
			}

			t.logger.Debug("Message sent",
				"chat_id", chatID,
				"length", len(text),
				"duration_ms", time.Since(start).Milliseconds())
			return nil
		},
		retry.Attempts(10),
		retry.Delay(time.Second),
		retry.MaxDelay(2*time.Minute),
		retry.MaxJitter(10*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			t.logger.Info("Retrying send after error", "attempt", n, "error", err)
		}),
		retry.RetryIf(func(err error) bool {
			// API rejections are deterministic; only transport errors retry.
			var ae *APIError
			return !errors.As(err, &ae)
		}),
	)
}

// chunks splits text into rune-safe pieces of at most size characters.
func chunks(text string, size int) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	out := make([]string, 0, (len(runes)+size-1)/size)
	for len(runes) > 0 {
		n := size
		if len(runes) < n {
			n = len(runes)
		}
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	return out
}
