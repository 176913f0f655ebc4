package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cogitto/cogitto-api/config"
	"github.com/cogitto/cogitto-api/interfaces"
	"github.com/sashabaranov/go-openai"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, req openai.ChatCompletionRequest)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Unexpected Authorization header %q", got)
		}
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		handler(w, req)
	}))
	t.Cleanup(server.Close)
	return server
}

func writeCompletion(w http.ResponseWriter, content string) {
	resp := openai.ChatCompletionResponse{
		ID:     "chatcmpl-test",
		Object: "chat.completion",
		Model:  "gpt-4",
		Choices: []openai.ChatCompletionChoice{{
			Index:        0,
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			FinishReason: openai.FinishReasonStop,
		}},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func TestGenerate(t *testing.T) {
	var captured openai.ChatCompletionRequest
	server := newTestServer(t, func(w http.ResponseWriter, req openai.ChatCompletionRequest) {
		captured = req
		writeCompletion(w, "  Warfarin and ibuprofen should not be combined.  ")
	})

	client := NewClient(Options{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: server.URL + "/v1/"})
	text, err := client.Generate(context.Background(), interfaces.Prompt{System: "be careful", User: "warfarin + ibuprofen?"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if text != "Warfarin and ibuprofen should not be combined." {
		t.Errorf("Unexpected text %q", text)
	}
	if client.Model() != "gpt-4o-mini" || captured.Model != "gpt-4o-mini" {
		t.Errorf("Expected model gpt-4o-mini, got %s / %s", client.Model(), captured.Model)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("Expected system and user messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != openai.ChatMessageRoleSystem || captured.Messages[0].Content != "be careful" {
		t.Errorf("Unexpected system message %+v", captured.Messages[0])
	}
	if captured.Messages[1].Role != openai.ChatMessageRoleUser || captured.Messages[1].Content != "warfarin + ibuprofen?" {
		t.Errorf("Unexpected user message %+v", captured.Messages[1])
	}
	if captured.MaxTokens != DefaultMaxTokens {
		t.Errorf("Expected max tokens %d, got %d", DefaultMaxTokens, captured.MaxTokens)
	}
	if captured.Temperature != DefaultTemperature || captured.PresencePenalty != DefaultPresencePenalty {
		t.Errorf("Unexpected sampling settings %v / %v", captured.Temperature, captured.PresencePenalty)
	}
}

func TestGenerateWithoutSystemPrompt(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, req openai.ChatCompletionRequest) {
		if len(req.Messages) != 1 || req.Messages[0].Role != openai.ChatMessageRoleUser {
			t.Errorf("Expected a single user message, got %+v", req.Messages)
		}
		writeCompletion(w, "ok")
	})

	client := NewClient(Options{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
	if _, err := client.Generate(context.Background(), interfaces.Prompt{User: "hi"}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if client.Model() != openai.GPT4 {
		t.Errorf("Expected default model %s, got %s", openai.GPT4, client.Model())
	}
}

func TestGenerateEmptyCompletion(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, req openai.ChatCompletionRequest) {
		writeCompletion(w, "   ")
	})

	client := NewClient(Options{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
	_, err := client.Generate(context.Background(), interfaces.Prompt{User: "hi"})
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("Expected ErrEmptyCompletion, got %v", err)
	}
}

func TestGenerateAPIError(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, req openai.ChatCompletionRequest) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
	})

	client := NewClient(Options{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
	_, err := client.Generate(context.Background(), interfaces.Prompt{User: "hi"})
	if err == nil {
		t.Fatal("Expected error")
	}
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected wrapped *openai.APIError, got %T: %v", err, err)
	}
	if apiErr.HTTPStatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", apiErr.HTTPStatusCode)
	}
}

func TestGenerateHonoursDeadline(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, req openai.ChatCompletionRequest) {
		time.Sleep(200 * time.Millisecond)
		writeCompletion(w, "too late")
	})

	client := NewClient(Options{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, interfaces.Prompt{User: "hi"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
}

func TestNewFromConfig(t *testing.T) {
	if gen := NewFromConfig(&config.Config{}); gen != nil {
		t.Errorf("Expected nil generator without an API key, got %T", gen)
	}

	gen := NewFromConfig(&config.Config{OpenAIAPIKey: "sk-test", OpenAIModel: "gpt-4"})
	if gen == nil || gen.Model() != "gpt-4" {
		t.Errorf("Expected gpt-4 generator, got %v", gen)
	}
}
