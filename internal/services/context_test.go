package services_test

import (
	"context"
	"testing"

	"sonalyze/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithClientID(ctx, "c-42")
	ctx = services.WithBoxID(ctx, "pi3")
	ctx = services.WithStage(ctx, "aggregate")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.ClientIDFromContext(ctx); !ok || id != "c-42" {
		t.Fatalf("unexpected client id: %v %v", id, ok)
	}
	if box, ok := services.BoxIDFromContext(ctx); !ok || box != "pi3" {
		t.Fatalf("unexpected box id: %v %v", box, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "aggregate" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
