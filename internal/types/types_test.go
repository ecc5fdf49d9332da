package types

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewFileDescriptor(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		file    string
		size    int64
		wantErr bool
	}{
		{"valid file", "report.pdf", 1024, false},
		{"zero size is valid", "empty.txt", 0, false},
		{"extensionless name is valid", "README", 10, false},
		{"empty name", "", 10, true},
		{"whitespace name", "   ", 10, true},
		{"negative size", "bad.bin", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fd, err := NewFileDescriptor(tt.file, tt.size, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewFileDescriptor(%q, %d) expected error", tt.file, tt.size)
				}
				if !IsInvalidInput(err) {
					t.Errorf("error %v should wrap ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if fd.Name != tt.file || fd.Size != tt.size || !fd.LastModified.Equal(now) {
				t.Errorf("NewFileDescriptor() = %+v, want name=%q size=%d", fd, tt.file, tt.size)
			}
		})
	}
}

func TestInvalidInputMessage(t *testing.T) {
	err := InvalidInput("AggregationAgent", "requires %s", "file metadata")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput marker, got %v", err)
	}
	want := "invalid input: AggregationAgent: requires file metadata"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if bare := InvalidInput("", ""); bare != ErrInvalidInput {
		t.Errorf("InvalidInput with no detail = %v, want the bare sentinel", bare)
	}
	if noMsg := InvalidInput("coordinator", ""); !strings.HasSuffix(noMsg.Error(), ": coordinator") {
		t.Errorf("InvalidInput component only = %q", noMsg.Error())
	}
}
