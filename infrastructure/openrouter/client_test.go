package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeAudioFixture(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunk.mp3")
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func chatReply(content string) string {
	reply := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	b, _ := json.Marshal(reply)
	return string(b)
}

func TestClient_Transcribe(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(chatReply(`{"text": "hello world", "words": [{"word": "hello", "start": 0.0, "end": 0.3}]}`)))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithModel("some/model"))
	audioPath := writeAudioFixture(t, 128)

	tr, err := client.Transcribe(context.Background(), audioPath)
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}

	if tr.Text != "hello world" {
		t.Errorf("Text = %q", tr.Text)
	}
	if len(tr.Words) != 1 || tr.Words[0].Word != "hello" {
		t.Errorf("Words = %+v", tr.Words)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotBody.Model != "some/model" {
		t.Errorf("model = %q", gotBody.Model)
	}
	if gotBody.Stream {
		t.Error("stream = true, want false")
	}
	if len(gotBody.Messages) != 1 || len(gotBody.Messages[0].Content) != 2 {
		t.Fatalf("unexpected message shape: %+v", gotBody.Messages)
	}
	if gotBody.Messages[0].Content[1].InputAudio == nil {
		t.Fatal("missing input_audio part")
	}
	if gotBody.Messages[0].Content[1].InputAudio.Format != "mp3" {
		t.Errorf("audio format = %q", gotBody.Messages[0].Content[1].InputAudio.Format)
	}
}

func TestClient_Transcribe_FencedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply("```json\n{\"text\": \"fenced\", \"words\": []}\n```")))
	}))
	defer server.Close()

	client := NewClient("k", WithBaseURL(server.URL))
	tr, err := client.Transcribe(context.Background(), writeAudioFixture(t, 64))
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}
	if tr.Text != "fenced" {
		t.Errorf("Text = %q", tr.Text)
	}
}

func TestClient_Transcribe_ProseFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply(`{"text": "salvaged text", "words": [{"word": "salvaged", "start"`)))
	}))
	defer server.Close()

	client := NewClient("k", WithBaseURL(server.URL))
	tr, err := client.Transcribe(context.Background(), writeAudioFixture(t, 64))
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}
	if tr.Text != "salvaged text" {
		t.Errorf("Text = %q", tr.Text)
	}
	if len(tr.Words) != 0 {
		t.Errorf("Words = %+v, want none", tr.Words)
	}
}

func TestClient_Transcribe_TooLarge(t *testing.T) {
	client := NewClient("k", WithMaxUploadBytes(100))
	audioPath := writeAudioFixture(t, 200)

	_, err := client.Transcribe(context.Background(), audioPath)
	if err == nil {
		t.Fatal("Transcribe() expected error for oversized audio")
	}
}

func TestClient_Transcribe_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error": {"message": "insufficient credits"}}`))
	}))
	defer server.Close()

	client := NewClient("k", WithBaseURL(server.URL))
	_, err := client.Transcribe(context.Background(), writeAudioFixture(t, 64))
	if err == nil {
		t.Fatal("Transcribe() expected error for API failure")
	}
}
