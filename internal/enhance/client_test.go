package enhance

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientCompleteSendsSparsePayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Fatalf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload["model"] != "gpt-4o-mini" {
			t.Fatalf("unexpected model: %v", payload["model"])
		}
		if payload["stream"] != false {
			t.Fatalf("expected stream false, got %v", payload["stream"])
		}
		for _, key := range []string{"top_p", "top_k", "min_p", "top_a", "seed", "repetition_penalty", "max_tokens"} {
			if _, ok := payload[key]; ok {
				t.Fatalf("neutral param %s leaked into payload: %v", key, payload[key])
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"Polished text."}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	result, err := client.Complete(context.Background(), Request{
		Model:    "gpt-4o-mini",
		Messages: []Message{{Role: "user", Content: "draft"}},
		Params:   DefaultParams(),
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if result != "Polished text." {
		t.Fatalf("unexpected result: %q", result)
	}
}

func TestClientStreamCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload["stream"] != true {
			t.Fatalf("expected stream true, got %v", payload["stream"])
		}
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseEvent("Hel"))
		io.WriteString(w, sseEvent("lo"))
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	stream, err := client.StreamCompletion(context.Background(), Request{
		Model:    "gpt-4o-mini",
		Messages: []Message{{Role: "user", Content: "draft"}},
	})
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	defer stream.Close()

	var got string
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("recv failed: %v", err)
		}
		got += chunk
	}
	if got != "Hello" {
		t.Fatalf("unexpected stream text: %q", got)
	}
}

func TestClientRejectsMissingKey(t *testing.T) {
	client := NewClient("http://localhost:1", "")
	_, err := client.Complete(context.Background(), Request{Model: "m"})
	if err != ErrNoAPIKey {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
	if _, err := client.ListModels(context.Background()); err != ErrNoAPIKey {
		t.Fatalf("expected ErrNoAPIKey from ListModels, got %v", err)
	}
}

func TestClientListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"gpt-4o-mini"},{"id":"gpt-4o"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("list models failed: %v", err)
	}
	if len(models) != 2 || models[0] != "gpt-4o-mini" || models[1] != "gpt-4o" {
		t.Fatalf("unexpected models: %v", models)
	}
}

func TestClientSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.Complete(context.Background(), Request{Model: "missing"})
	if err == nil {
		t.Fatal("expected an error")
	}
}
