package embedding

import "testing"

func TestNewGenAIEngineRequiresAPIKey(t *testing.T) {
	_, err := NewGenAIEngine("", "gemini-embedding-001", "SEMANTIC_SIMILARITY")
	if err == nil {
		t.Fatal("expected error when API key is empty")
	}
}

func TestGenAIEngineNameAndDimensions(t *testing.T) {
	e := &GenAIEngine{model: "gemini-embedding-001", taskType: "SEMANTIC_SIMILARITY"}
	if e.Name() != "genai:gemini-embedding-001" {
		t.Errorf("Name() = %q, want genai:gemini-embedding-001", e.Name())
	}
	if e.Dimensions() != 3072 {
		t.Errorf("Dimensions() = %d, want 3072", e.Dimensions())
	}
	if e.ModelInfo().Dimensions != 3072 {
		t.Errorf("ModelInfo().Dimensions = %d, want 3072", e.ModelInfo().Dimensions)
	}
	if err := e.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}
