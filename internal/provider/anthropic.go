// Package provider implements the HTTP client for the remote
// chat-completion API. It owns the wire encoding of turns, including
// cache_control placement on marked turns; everything it returns is decoded
// back into core blocks so callers never see wire shapes.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/erg0nix/graft/internal/cache"
	"github.com/erg0nix/graft/internal/core"
)

const (
	apiVersion     = "2023-06-01"
	defaultTimeout = 600 * time.Second
)

type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Request is one completion call. Turns carry transient cache markers set
// by the cache package; CacheTTL selects the lifetime written into the
// matching cache_control entries.
type Request struct {
	Model          string
	System         string
	MaxTokens      int
	ThinkingBudget int
	CacheTTL       cache.TTL
	Turns          []core.Turn
	Tools          []core.ToolDef
}

// Response is the decoded completion: content blocks in API order, the
// stop reason, and usage accounting.
type Response struct {
	Blocks     []core.Block
	StopReason string
	Usage      core.Usage
}

// ToolUses returns the tool invocations the model issued, in order.
func (r *Response) ToolUses() []core.Block {
	var uses []core.Block
	for _, block := range r.Blocks {
		if block.Type == core.BlockToolUse {
			uses = append(uses, block)
		}
	}
	return uses
}

// Text concatenates the response's text blocks.
func (r *Response) Text() string {
	var buf bytes.Buffer
	for _, block := range r.Blocks {
		if block.Type != core.BlockText {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(block.Text)
	}
	return buf.String()
}

type cacheControl struct {
	Type string `json:"type"`
	TTL  string `json:"ttl,omitempty"`
}

type wireBlock struct {
	core.Block
	CacheControl *cacheControl `json:"cache_control,omitempty"`
}

type wireMessage struct {
	Role    core.Role   `json:"role"`
	Content []wireBlock `json:"content"`
}

type wireResponse struct {
	Content    []core.Block `json:"content"`
	StopReason string       `json:"stop_reason"`
	Usage      core.Usage   `json:"usage"`
}

type wireError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one messages request and decodes the reply.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	requestID := core.NewRequestID()

	payload := map[string]any{
		"model":      req.Model,
		"max_tokens": req.MaxTokens,
		"messages":   encodeMessages(normalizeTurns(req.Turns), req.CacheTTL),
	}

	if req.System != "" {
		payload["system"] = req.System
	}

	if req.ThinkingBudget >= 1024 {
		payload["thinking"] = map[string]any{
			"type":          "enabled",
			"budget_tokens": req.ThinkingBudget,
		}
	}

	if len(req.Tools) > 0 {
		tools := make([]map[string]any, 0, len(req.Tools))
		for _, tool := range req.Tools {
			tools = append(tools, map[string]any{
				"name":         tool.Name,
				"description":  tool.Description,
				"input_schema": tool.InputSchema,
			})
		}
		payload["tools"] = tools
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", apiVersion)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("completion request failed (request_id=%s): %w", requestID, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response (request_id=%s): %w", requestID, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr wireError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("api error %s (request_id=%s): %s", apiErr.Error.Type, requestID, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("api returned status %d (request_id=%s)", httpResp.StatusCode, requestID)
	}

	var decoded wireResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode response (request_id=%s): %w", requestID, err)
	}

	return &Response{
		Blocks:     decoded.Content,
		StopReason: decoded.StopReason,
		Usage:      decoded.Usage,
	}, nil
}

// encodeMessages converts turns to wire messages, attaching cache_control
// to the final block of each marked turn.
func encodeMessages(turns []core.Turn, ttl cache.TTL) []wireMessage {
	control := controlFor(ttl)

	messages := make([]wireMessage, 0, len(turns))
	for _, turn := range turns {
		content := make([]wireBlock, 0, len(turn.Blocks))
		for _, block := range turn.Blocks {
			content = append(content, wireBlock{Block: block})
		}
		if turn.CacheMarker && control != nil && len(content) > 0 {
			content[len(content)-1].CacheControl = control
		}
		messages = append(messages, wireMessage{Role: turn.Role, Content: content})
	}
	return messages
}

func controlFor(ttl cache.TTL) *cacheControl {
	switch ttl {
	case cache.TTL5m:
		return &cacheControl{Type: "ephemeral"}
	case cache.TTL1h:
		return &cacheControl{Type: "ephemeral", TTL: "1h"}
	default:
		return nil
	}
}
