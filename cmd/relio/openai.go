package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"

	reliosdk "github.com/relio-ai/relio-sdk-go"
)

// openaiClient talks to an OpenAI-compatible chat completions endpoint.
type openaiClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func newOpenAIClient(baseURL, apiKey, model string) *openaiClient {
	return &openaiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: 90 * time.Second},
	}
}

type chatCompletionRequest struct {
	Model       string               `json:"model"`
	Messages    []chatCompletionTurn `json:"messages"`
	Temperature float64              `json:"temperature,omitempty"`
}

type chatCompletionTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *openaiClient) chat(ctx context.Context, systemPrompt string, messages []reliosdk.ChatMessage) (string, error) {
	turns := make([]chatCompletionTurn, 0, len(messages)+1)
	turns = append(turns, chatCompletionTurn{Role: "system", Content: systemPrompt})
	for _, m := range messages {
		turns = append(turns, chatCompletionTurn{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model:       c.model,
		Messages:    turns,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out chatCompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != nil {
			return "", fmt.Errorf("completion failed (%d): %s", resp.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("completion failed (%d)", resp.StatusCode)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// replyFuncFromViper wires the configured endpoint into the pipeline.
// Without an API key the pipeline degrades to its fallback reply.
func replyFuncFromViper() reliosdk.ReplyFunc {
	apiKey := strings.TrimSpace(viper.GetString("llm.api_key"))
	if apiKey == "" {
		return nil
	}
	client := newOpenAIClient(
		viper.GetString("llm.endpoint"),
		apiKey,
		viper.GetString("llm.model"),
	)
	return client.chat
}
