package core

import (
	"errors"
	"testing"
)

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr error
	}{
		{
			name:    "valid chunk",
			chunk:   &Chunk{Id: 1, Origin: "a.txt", Index: 0, Text: "The sky is blue."},
			wantErr: nil,
		},
		{
			name:    "valid chunk without origin",
			chunk:   &Chunk{Text: "Grass is green."},
			wantErr: nil,
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: ErrInvalidChunk,
		},
		{
			name:    "empty text",
			chunk:   &Chunk{Origin: "a.txt"},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "negative index",
			chunk:   &Chunk{Text: "x", Index: -1},
			wantErr: ErrInvalidChunk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateIndexEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   *IndexEntry
		wantErr error
	}{
		{
			name:    "valid entry",
			entry:   &IndexEntry{Chunk: Chunk{Text: "hello"}, Vector: []float32{1, 0}},
			wantErr: nil,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "missing vector",
			entry:   &IndexEntry{Chunk: Chunk{Text: "hello"}},
			wantErr: ErrEmptyVector,
		},
		{
			name:    "invalid chunk",
			entry:   &IndexEntry{Vector: []float32{1}},
			wantErr: ErrInvalidChunk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIndexEntry(tt.entry)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateIndexEntry() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateIndexEntry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSession(t *testing.T) {
	tests := []struct {
		name    string
		session SessionContext
		wantErr bool
	}{
		{"uuid namespace", NewSessionContext("4f1c2d7e-9a35-4b8e-8c1d-2f0e6a9b3c71"), false},
		{"empty namespace", SessionContext{ID: "x"}, true},
		{"dot", NewSessionContext("."), true},
		{"parent", NewSessionContext(".."), true},
		{"path separator", NewSessionContext("a/b"), true},
		{"windows separator", NewSessionContext(`a\b`), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSession(tt.session)
			if tt.wantErr && !errors.Is(err, ErrInvalidSession) {
				t.Errorf("ValidateSession() error = %v, want ErrInvalidSession", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateSession() unexpected error: %v", err)
			}
		})
	}
}
