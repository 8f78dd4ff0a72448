package exchange

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendMessagePostsUtteranceAndParsesReply(t *testing.T) {
	var received struct {
		Text     string `json:"text"`
		Language string `json:"language"`
		Actions  []struct {
			Name string `json:"name"`
		} `json:"actions"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		_ = json.NewEncoder(w).Encode(Response{
			Success:  true,
			Response: "Hi there",
			Action:   "navigate",
			Data:     &ResponseData{Destination: "/home"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, WithAPIKey("test-key"))
	response, err := client.SendMessage(context.Background(), Request{Text: "Hello", Language: "en"})
	if err != nil {
		t.Fatalf("failed to send message: %v", err)
	}

	if received.Text != "Hello" || received.Language != "en" {
		t.Fatalf("unexpected request body: %+v", received)
	}
	if len(received.Actions) == 0 {
		t.Fatalf("expected advertised actions in request body")
	}

	if !response.Success || response.Response != "Hi there" {
		t.Fatalf("unexpected response: %+v", response)
	}
	if response.Destination() != "/home" {
		t.Fatalf("expected destination %q, got %q", "/home", response.Destination())
	}
}

func TestSendMessageReturnsErrorOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.SendMessage(context.Background(), Request{Text: "Hello"}); err == nil {
		t.Fatalf("expected error on 502 response")
	}
}

func TestSendMessageReturnsRefusalWithoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(Response{Success: false, Error: "unsupported command"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	response, err := client.SendMessage(context.Background(), Request{Text: "Hello"})
	if err != nil {
		t.Fatalf("refusal should not be a transport error, got %v", err)
	}
	if response.Success {
		t.Fatalf("expected refusal, got success")
	}
	if response.Error != "unsupported command" {
		t.Fatalf("expected refusal reason, got %q", response.Error)
	}
}

func TestDestinationWithoutData(t *testing.T) {
	response := &Response{Success: true, Response: "ok"}
	if got := response.Destination(); got != "" {
		t.Fatalf("expected empty destination, got %q", got)
	}
}
