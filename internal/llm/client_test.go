package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func chatServer(t *testing.T, handler func(req ChatRequest) ChatResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(handler(req))
	}))
}

func TestClientChatWithMessages(t *testing.T) {
	var gotReq ChatRequest
	srv := chatServer(t, func(req ChatRequest) ChatResponse {
		gotReq = req
		return ChatResponse{
			Choices: []ChatChoice{{Message: Message{Role: "assistant", Content: "Response"}}},
		}
	})
	defer srv.Close()

	client := NewClient(srv.URL, "key", "default-model", nil)
	messages := []Message{
		{Role: "system", Content: "You answer RFP questions."},
		{Role: "user", Content: "What is your cloud experience?"},
	}

	reply, err := client.ChatWithMessages(context.Background(), messages, ChatParams{Temperature: 0.3, MaxTokens: 1500})
	if err != nil {
		t.Fatalf("ChatWithMessages() error = %v", err)
	}
	if reply != "Response" {
		t.Errorf("reply = %q, want Response", reply)
	}
	if gotReq.Model != "default-model" {
		t.Errorf("model = %q, want default-model", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("unexpected messages: %+v", gotReq.Messages)
	}
	if gotReq.MaxTokens != 1500 {
		t.Errorf("max_tokens = %d, want 1500", gotReq.MaxTokens)
	}
}

func TestClientChatWithMessagesModelOverride(t *testing.T) {
	var gotModel string
	srv := chatServer(t, func(req ChatRequest) ChatResponse {
		gotModel = req.Model
		return ChatResponse{Choices: []ChatChoice{{Message: Message{Content: "ok"}}}}
	})
	defer srv.Close()

	client := NewClient(srv.URL, "key", "default-model", nil)
	_, err := client.ChatWithMessages(context.Background(), []Message{{Role: "user", Content: "q"}}, ChatParams{Model: "override"})
	if err != nil {
		t.Fatalf("ChatWithMessages() error = %v", err)
	}
	if gotModel != "override" {
		t.Errorf("model = %q, want override", gotModel)
	}
}

func TestClientChatBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "m", nil)
	if _, err := client.ChatWithMessages(context.Background(), []Message{{Role: "user", Content: "q"}}, ChatParams{}); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestClientChatNoChoices(t *testing.T) {
	srv := chatServer(t, func(req ChatRequest) ChatResponse { return ChatResponse{} })
	defer srv.Close()

	client := NewClient(srv.URL, "key", "m", nil)
	if _, err := client.ChatWithMessages(context.Background(), []Message{{Role: "user", Content: "q"}}, ChatParams{}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestClientRespectsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "m", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := client.ChatWithMessages(ctx, []Message{{Role: "user", Content: "q"}}, ChatParams{}); err == nil {
		t.Fatal("expected error for expired context")
	}
}

func TestLimiterBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int64
	srv := chatServer(t, func(req ChatRequest) ChatResponse {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		return ChatResponse{Choices: []ChatChoice{{Message: Message{Content: "ok"}}}}
	})
	defer srv.Close()

	client := NewClient(srv.URL, "key", "m", NewLimiter(2))

	done := make(chan struct{})
	for i := 0; i < 6; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, _ = client.ChatWithMessages(context.Background(), []Message{{Role: "user", Content: "q"}}, ChatParams{})
		}()
	}
	for i := 0; i < 6; i++ {
		<-done
	}

	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrent requests = %d, want <= 2", p)
	}
}
