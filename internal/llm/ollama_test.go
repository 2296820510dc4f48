package llm

import "testing"

func TestNewOllamaClient_DefaultBaseURL(t *testing.T) {
	client, err := NewOllamaClient(DefaultOllamaModel, "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if client.baseURL != defaultOllamaBaseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL, defaultOllamaBaseURL)
	}
	if client.model != DefaultOllamaModel {
		t.Errorf("model = %q, want %q", client.model, DefaultOllamaModel)
	}
}

func TestNewOllamaClient_CustomBaseURL(t *testing.T) {
	client, err := NewOllamaClient(DefaultOllamaModel, "http://ollama.internal:11434")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if client.baseURL != "http://ollama.internal:11434" {
		t.Errorf("baseURL = %q, want override preserved", client.baseURL)
	}
}

func TestNewOllamaClient_EmptyModel(t *testing.T) {
	_, err := NewOllamaClient("", "")
	if err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestNewOllamaClient_WhitespaceOnlyModel(t *testing.T) {
	_, err := NewOllamaClient("   ", "")
	if err == nil {
		t.Fatal("expected error for whitespace-only model")
	}
}
