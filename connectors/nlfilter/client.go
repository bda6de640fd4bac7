package nlfilter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/kilianp07/rulecheck/core/logger"
	"github.com/kilianp07/rulecheck/core/model"
)

var (
	// ErrEmptyQuestion is returned when the question is blank.
	ErrEmptyQuestion = errors.New("empty question")
	// ErrMalformedResponse is returned when the service answer is not a
	// JSON array of records.
	ErrMalformedResponse = errors.New("malformed filter response")
)

// Client calls a remote natural-language filter.
type Client struct {
	mode   string
	cfg    Config
	http   *resty.Client
	tokens oauth2.TokenSource
	log    logger.Logger
}

// New returns a client for mode, which is either ModeProxy or
// ModeCompletion.
func New(mode string, cfg Config, log logger.Logger) (*Client, error) {
	if mode != ModeProxy && mode != ModeCompletion {
		return nil, fmt.Errorf("unknown nlfilter mode %q", mode)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}
	h := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		h.SetAuthToken(cfg.APIKey)
	}
	c := &Client{mode: mode, cfg: cfg, http: h, log: log}
	if cfg.OAuth != nil {
		// Tokens are cached until expiry; the token request shares the call timeout.
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: cfg.Timeout})
		cc := cfg.OAuth.clientCredentials()
		c.tokens = cc.TokenSource(tokenCtx)
	}
	return c, nil
}

// Mode returns the transport mode of the client.
func (c *Client) Mode() string { return c.mode }

// Filter sends question and data to the service and returns the records
// it selected. The input slice is never modified.
func (c *Client) Filter(ctx context.Context, question string, data []model.Record) ([]model.Record, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if data == nil {
		data = []model.Record{}
	}

	var body any
	switch c.mode {
	case ModeCompletion:
		prompt, err := buildPrompt(question, data, c.cfg.MaxDataChars)
		if err != nil {
			return nil, err
		}
		body = completionRequest{
			Model:       c.cfg.Model,
			Messages:    []chatMessage{{Role: "user", Content: prompt}},
			Temperature: c.cfg.Temperature,
		}
	default:
		body = proxyRequest{Question: question, Data: data}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	raw, err := c.post(ctx, body)
	if err != nil {
		return nil, err
	}

	var payload string
	if c.mode == ModeCompletion {
		payload = completionContent(raw)
	} else {
		payload = string(raw)
	}
	out, err := decodeRecords(payload)
	if err != nil {
		return nil, err
	}
	c.log.Debugw("nlfilter answered", map[string]any{
		"mode":   c.mode,
		"before": len(data),
		"after":  len(out),
	})
	return out, nil
}

func (c *Client) post(ctx context.Context, body any) ([]byte, error) {
	backoff := retry.WithMaxRetries(uint64(max(c.cfg.MaxAttempts-1, 0)), retry.NewExponential(c.cfg.Backoff))
	var raw []byte
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		req := c.http.R().SetContext(ctx).SetBody(body)
		if c.tokens != nil {
			tok, err := c.tokens.Token()
			if err != nil {
				return fmt.Errorf("token: %w", err)
			}
			req.SetAuthToken(tok.AccessToken)
		}
		resp, err := req.Post(c.cfg.URL)
		if err != nil {
			c.log.Warnf("nlfilter attempt %d failed: %v", attempt, err)
			return retry.RetryableError(fmt.Errorf("request: %w", err))
		}
		status := resp.StatusCode()
		if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
			c.log.Warnf("nlfilter attempt %d: status %d", attempt, status)
			return retry.RetryableError(fmt.Errorf("unexpected status code: %d", status))
		}
		if resp.IsError() {
			return fmt.Errorf("unexpected status code: %d, body: %s", status, resp.Body())
		}
		raw = resp.Body()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("nlfilter: %w", err)
	}
	return raw, nil
}

// decodeRecords parses s as a JSON array of objects.
func decodeRecords(s string) ([]model.Record, error) {
	s = strings.TrimSpace(s)
	if !gjson.Valid(s) || !gjson.Parse(s).IsArray() {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformedResponse)
	}
	var out []model.Record
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	for i, r := range out {
		if r == nil {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrMalformedResponse, i)
		}
	}
	if out == nil {
		out = []model.Record{}
	}
	return out, nil
}
