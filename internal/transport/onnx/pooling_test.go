package onnx

import (
	"math"
	"testing"

	ort "github.com/yalue/onnxruntime_go"
)

func TestTruncate_KeepsFinalSpecialToken(t *testing.T) {
	ids := []int{101, 7, 8, 9, 10, 102}
	mask := []int{1, 1, 1, 1, 1, 1}
	types := []int{0, 0, 0, 0, 0, 0}

	gotIDs, gotMask, gotTypes := truncate(ids, mask, types, 4)
	want := []int{101, 7, 8, 102}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("ids = %v, want %v", gotIDs, want)
		}
	}
	if len(gotMask) != 4 || len(gotTypes) != 4 {
		t.Errorf("mask/types not truncated: %v %v", gotMask, gotTypes)
	}
	if ids[3] != 9 {
		t.Error("input slice mutated")
	}
}

func TestTruncate_ShortSequenceUntouched(t *testing.T) {
	ids := []int{101, 5, 102}
	gotIDs, gotMask, gotTypes := truncate(ids, nil, nil, 256)
	if len(gotIDs) != 3 || len(gotMask) != 3 || len(gotTypes) != 3 {
		t.Fatalf("lengths = %d/%d/%d", len(gotIDs), len(gotMask), len(gotTypes))
	}
	for _, m := range gotMask {
		if m != 1 {
			t.Fatalf("missing mask should default to ones, got %v", gotMask)
		}
	}
}

func TestPool_PooledOutput(t *testing.T) {
	vec, err := pool(ort.NewShape(1, 3), []float32{0.1, 0.2, 0.3}, []int{1, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 || vec[2] != 0.3 {
		t.Errorf("vec = %v", vec)
	}
}

func TestPool_MeanOverMaskedTokens(t *testing.T) {
	// Three tokens, the last one padded out.
	hidden := []float32{
		1, 2,
		3, 4,
		100, 100,
	}
	vec, err := pool(ort.NewShape(1, 3, 2), hidden, []int{1, 1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vec[0] != 2 || vec[1] != 3 {
		t.Errorf("vec = %v, want [2 3]", vec)
	}
}

func TestPool_ShapeErrors(t *testing.T) {
	if _, err := pool(ort.NewShape(1, 2, 2), []float32{1, 2, 3, 4}, []int{1}); err == nil {
		t.Error("expected token count mismatch error")
	}
	if _, err := pool(ort.NewShape(4), []float32{1, 2, 3, 4}, nil); err == nil {
		t.Error("expected rank error")
	}
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	normalize(v)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("v = %v", v)
	}

	zero := []float32{0, 0}
	normalize(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector changed: %v", zero)
	}
}

func TestSelectInputs(t *testing.T) {
	names, withTypes, err := selectInputs([]ort.InputOutputInfo{
		{Name: "input_ids"}, {Name: "attention_mask"}, {Name: "token_type_ids"},
	})
	if err != nil || !withTypes || len(names) != 3 {
		t.Fatalf("bert-style inputs: %v %v %v", names, withTypes, err)
	}

	names, withTypes, err = selectInputs([]ort.InputOutputInfo{{Name: "input_ids"}, {Name: "attention_mask"}})
	if err != nil || withTypes || len(names) != 2 {
		t.Fatalf("roberta-style inputs: %v %v %v", names, withTypes, err)
	}

	if _, _, err = selectInputs([]ort.InputOutputInfo{{Name: "pixel_values"}}); err == nil {
		t.Error("expected error for a non-text model")
	}
}

func TestSelectOutput(t *testing.T) {
	out, err := selectOutput([]ort.InputOutputInfo{{Name: "token_embeddings"}, {Name: "sentence_embedding"}})
	if err != nil || out != "sentence_embedding" {
		t.Fatalf("out = %q, %v", out, err)
	}
	out, err = selectOutput([]ort.InputOutputInfo{{Name: "last_hidden_state"}})
	if err != nil || out != "last_hidden_state" {
		t.Fatalf("out = %q, %v", out, err)
	}
	if _, err = selectOutput(nil); err == nil {
		t.Error("expected error for no outputs")
	}
}
