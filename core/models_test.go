package core

import (
	"errors"
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	if IDFromContent("The sky is blue.") == IDFromContent("Grass is green.") {
		t.Error("IDFromContent() produced the same ID for different content")
	}
}

func TestDocumentStatus(t *testing.T) {
	ok := NewDocument("a.txt", []string{"hello"})
	if !ok.OK() {
		t.Errorf("NewDocument() status = %v, want ok", ok.Status)
	}

	failed := FailedDocument("b.exe", ErrUnsupportedFileType)
	if failed.OK() {
		t.Error("FailedDocument() reported OK")
	}
	if !errors.Is(failed.Reason, ErrUnsupportedFileType) {
		t.Errorf("FailedDocument() reason = %v", failed.Reason)
	}
	if failed.Status.String() != "failed" {
		t.Errorf("Status.String() = %q, want failed", failed.Status.String())
	}

	var nilDoc *Document
	if nilDoc.OK() {
		t.Error("nil document reported OK")
	}
}

func TestRetrievalResultTexts(t *testing.T) {
	r := RetrievalResult{
		{Chunk: &Chunk{Text: "first"}, Score: 0.9},
		{Chunk: &Chunk{Text: "second"}, Score: 0.5},
	}
	texts := r.Texts()
	if len(texts) != 2 || texts[0] != "first" || texts[1] != "second" {
		t.Errorf("Texts() = %v", texts)
	}
	if len(RetrievalResult(nil).Texts()) != 0 {
		t.Error("Texts() on empty result should be empty")
	}
}

func TestAnswerFailed(t *testing.T) {
	a := &Answer{Text: "fine"}
	if a.Failed() {
		t.Error("Failed() = true for answer without error")
	}
	a.Err = ErrGeneration
	if !a.Failed() {
		t.Error("Failed() = false for answer with error")
	}
}
