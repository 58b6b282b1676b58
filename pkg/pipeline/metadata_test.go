package pipeline

import (
	"encoding/json"
	"testing"

	"ai-research-be/internal/entity"
)

func TestDecodeMetadataResolvesShapeFromStep(t *testing.T) {
	raw := json.RawMessage(`{"summary":"s","keywords":["a","b"],"variables":{"x":"independent"}}`)

	md, err := DecodeMetadata(entity.StepThesis, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	thesis, ok := md.(ThesisMetadata)
	if !ok {
		t.Fatalf("decoded type = %T, want ThesisMetadata", md)
	}
	if len(thesis.Keywords) != 2 || thesis.Variables["x"] != "independent" {
		t.Errorf("decoded payload = %+v", thesis)
	}
}

func TestDecodeMetadataEveryStepHasAShape(t *testing.T) {
	for _, step := range Steps {
		md, err := DecodeMetadata(step, json.RawMessage(`{}`))
		if err != nil {
			t.Fatalf("DecodeMetadata(%s) error: %v", step, err)
		}
		if md.Step() != step {
			t.Errorf("DecodeMetadata(%s).Step() = %s", step, md.Step())
		}
	}
}

func TestDecodeMetadataUnknownStep(t *testing.T) {
	if _, err := DecodeMetadata(entity.StepType("review"), json.RawMessage(`{}`)); err == nil {
		t.Errorf("expected error for unknown step")
	}
}

func TestDecodeMetadataEmptyPayload(t *testing.T) {
	// Failed records store an empty object; nil must behave the same.
	md, err := DecodeMetadata(entity.StepSearch, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	search := md.(SearchMetadata)
	if len(search.Papers) != 0 {
		t.Errorf("empty payload decoded papers: %+v", search.Papers)
	}
}

func TestEncodeMetadataNil(t *testing.T) {
	raw, err := EncodeMetadata(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{}` {
		t.Errorf("nil metadata encoded as %s, want {}", raw)
	}
}
