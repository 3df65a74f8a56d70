package services_test

import (
	"context"
	"testing"

	"newsroom/internal/services"
)

func TestContextValuesRoundTrip(t *testing.T) {
	ctx := services.WithRunID(services.WithStage(services.WithItem(context.Background(), "dQw4w9WgXcQ"), "transcripts"), "run-7")

	if id, ok := services.ItemFromContext(ctx); !ok || id != "dQw4w9WgXcQ" {
		t.Fatalf("item = %q, %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "transcripts" {
		t.Fatalf("stage = %q, %v", stage, ok)
	}
	if run, ok := services.RunIDFromContext(ctx); !ok || run != "run-7" {
		t.Fatalf("run id = %q, %v", run, ok)
	}
}

func TestEmptyValuesAreNotStored(t *testing.T) {
	ctx := services.WithItem(services.WithStage(context.Background(), ""), "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("empty stage should not be stored")
	}
	if _, ok := services.ItemFromContext(ctx); ok {
		t.Fatal("empty item should not be stored")
	}
}
