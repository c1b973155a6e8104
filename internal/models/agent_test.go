package models

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	cfg := AgentConfig{}
	if err := cfg.Validate(); !errors.Is(err, ErrConfigNoBio) {
		t.Fatalf("expected ErrConfigNoBio, got %v", err)
	}

	cfg.Bio = []string{"a pioneer"}
	if err := cfg.Validate(); !errors.Is(err, ErrConfigNoLore) {
		t.Fatalf("expected ErrConfigNoLore, got %v", err)
	}

	cfg.Lore = []string{"wrote the first program"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := AgentConfig{Bio: []string{"b"}, Lore: []string{"l"}}
	cfg.ApplyDefaults()

	if cfg.Style == nil || len(cfg.Style.All) == 0 || len(cfg.Style.Chat) == 0 || len(cfg.Style.Post) == 0 {
		t.Fatal("expected default style directives")
	}
	if cfg.ModelProvider != "groq" {
		t.Fatalf("expected default model provider groq, got %q", cfg.ModelProvider)
	}
	if len(cfg.Adjectives) != 3 {
		t.Fatalf("expected 3 default adjectives, got %d", len(cfg.Adjectives))
	}
	if cfg.Topics == nil || cfg.Plugins == nil || cfg.PostExamples == nil || cfg.MessageExamples == nil {
		t.Fatal("optional slices must not stay nil")
	}
}

func TestConfigApplyDefaultsKeepsValues(t *testing.T) {
	style := &AgentStyle{All: []string{"be formal"}}
	cfg := AgentConfig{
		Bio:           []string{"b"},
		Lore:          []string{"l"},
		Style:         style,
		Adjectives:    []string{"dry"},
		ModelProvider: "openai",
	}
	cfg.ApplyDefaults()

	if cfg.Style != style {
		t.Fatal("existing style was replaced")
	}
	if cfg.ModelProvider != "openai" {
		t.Fatalf("model provider overwritten: %q", cfg.ModelProvider)
	}
	if len(cfg.Adjectives) != 1 || cfg.Adjectives[0] != "dry" {
		t.Fatalf("adjectives overwritten: %v", cfg.Adjectives)
	}
}
