package qstash

import (
	"context"
	"fmt"
)

// ChatRole is the author of a chat message.
type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleUser      ChatRole = "user"
)

// Chat response formats.
const (
	ChatFormatText       = "text"
	ChatFormatJSONObject = "json_object"
)

// ChatMessage is one message of a chat conversation.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`

	// Name optionally identifies the participant.
	Name string `json:"name,omitempty"`
}

// ChatResponseFormat constrains the model output. Type is ChatFormatText or
// ChatFormatJSONObject.
type ChatResponseFormat struct {
	Type string `json:"type"`
}

// ChatCompletionRequest is an OpenAI-compatible chat completion request.
// Optional fields are pointers so that zero values can be expressed.
type ChatCompletionRequest struct {
	// Model is the name of the model. Required.
	Model string `json:"model"`

	// Messages is the conversation so far. Required.
	Messages []ChatMessage `json:"messages"`

	// FrequencyPenalty is between -2.0 and 2.0; positive values penalize
	// tokens by their frequency so far.
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`

	// LogitBias shifts the likelihood of specific token IDs.
	LogitBias map[string]int `json:"logit_bias,omitempty"`

	// Logprobs requests log probabilities of the output tokens.
	Logprobs *bool `json:"logprobs,omitempty"`

	// TopLogprobs is how many likely alternatives to return per position,
	// 0 through 20.
	TopLogprobs *int `json:"top_logprobs,omitempty"`

	// MaxTokens caps the generated completion length.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// N is how many completion choices to generate.
	N *int `json:"n,omitempty"`

	// PresencePenalty is between -2.0 and 2.0; positive values penalize
	// tokens that already appeared.
	PresencePenalty *float64 `json:"presence_penalty,omitempty"`

	// ResponseFormat constrains the output format.
	ResponseFormat *ChatResponseFormat `json:"response_format,omitempty"`

	// Seed requests deterministic sampling.
	Seed *int64 `json:"seed,omitempty"`

	// Stop lists up to 4 sequences that end generation.
	Stop []string `json:"stop,omitempty"`

	// Stream requests partial deltas. Streaming is not supported by this
	// client; leave it false.
	Stream bool `json:"stream,omitempty"`

	// Temperature is the sampling temperature, 0 through 2.
	Temperature *float64 `json:"temperature,omitempty"`

	// TopP is the nucleus sampling threshold, 0.0 through 1.0.
	TopP *float64 `json:"top_p,omitempty"`
}

// ChatCompletionResponse is an OpenAI-compatible chat completion.
type ChatCompletionResponse struct {
	ID      string       `json:"id"`
	Choices []ChatChoice `json:"choices"`

	// Created is the creation time in unix seconds.
	Created int64 `json:"created"`

	Model             string    `json:"model"`
	SystemFingerprint string    `json:"system_fingerprint,omitempty"`
	Object            string    `json:"object"`
	Usage             ChatUsage `json:"usage"`
}

// ChatChoice is one generated completion.
type ChatChoice struct {
	// FinishReason is why generation stopped, for example "stop" or "length".
	FinishReason string `json:"finish_reason"`

	Index    int           `json:"index"`
	Message  ChatMessage   `json:"message"`
	Logprobs *ChatLogprobs `json:"logprobs,omitempty"`
}

// ChatLogprobs holds per-token log probabilities of a choice.
type ChatLogprobs struct {
	Content []ChatTokenLogprob `json:"content,omitempty"`
}

// ChatTokenLogprob is the log probability of one generated token.
type ChatTokenLogprob struct {
	Token       string           `json:"token"`
	Logprob     float64          `json:"logprob"`
	Bytes       []int            `json:"bytes,omitempty"`
	TopLogprobs []ChatTopLogprob `json:"top_logprobs,omitempty"`
}

// ChatTopLogprob is one alternative token at a position.
type ChatTopLogprob struct {
	Token   string  `json:"token"`
	Logprob float64 `json:"logprob"`
	Bytes   []int   `json:"bytes,omitempty"`
}

// ChatUsage is the token accounting of a completion.
type ChatUsage struct {
	CompletionTokens int `json:"completion_tokens"`
	PromptTokens     int `json:"prompt_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletion runs a chat completion against the QStash LLM endpoint.
// Streaming is not supported; requests with Stream set are rejected.
func (c *Client) ChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("qstash: request is required")
	}
	if req.Model == "" {
		return nil, fmt.Errorf("qstash: model is required")
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("qstash: at least one message is required")
	}
	if req.Stream {
		return nil, fmt.Errorf("qstash: streaming responses are not supported")
	}

	var res ChatCompletionResponse
	if err := c.transport.postJSON(ctx, "/llm/v1/chat/completions", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
