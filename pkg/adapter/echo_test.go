package adapter

import (
	"context"
	"testing"
)

func TestEchoAdapter(t *testing.T) {
	a := NewEchoAdapter("[echo] ")
	got, err := a.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "[echo] hello" {
		t.Fatalf("got %q", got)
	}
	if a.Name() != "echo" {
		t.Fatalf("unexpected name %q", a.Name())
	}
}

func TestEchoAdapterCannedResponses(t *testing.T) {
	a := NewEchoAdapterWithResponses(map[string]string{"ping": "- pong"})

	got, err := a.Generate(context.Background(), "ping")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "- pong" {
		t.Fatalf("got %q", got)
	}

	// Unknown prompts fall back to echoing.
	got, _ = a.Generate(context.Background(), "other")
	if got != "other" {
		t.Fatalf("got %q", got)
	}
}
