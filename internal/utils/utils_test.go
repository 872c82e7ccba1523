package utils

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"carne", []string{"carne"}},
		{" carne, pescado ,,lacteo ", []string{"carne", "pescado", "lacteo"}},
	}
	for _, tt := range tests {
		if got := ParseCSV(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("ParseCSV(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCatalogPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.sqlite")
	got, err := CatalogPath(path)
	if err != nil {
		t.Fatalf("CatalogPath: %v", err)
	}
	if got != path {
		t.Fatalf("CatalogPath(%q) = %q", path, got)
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		t.Fatalf("catalog directory was not created: %v", err)
	}
}

func TestFileLockWaitsForHolder(t *testing.T) {
	target := filepath.Join(t.TempDir(), "cesta.json")
	holder := NewFileLock(target)
	if err := holder.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if holder.Path() != target+".lock" {
		t.Fatalf("unexpected lock path %s", holder.Path())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := WithFileLock(ctx, target, func() error {
		t.Fatalf("ran while another holder had the lock")
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected a deadline error, got %v", err)
	}

	released := make(chan struct{})
	go func() {
		time.Sleep(50 * time.Millisecond)
		holder.Release()
		close(released)
	}()
	ran := false
	if err := WithFileLock(context.Background(), target, func() error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("WithFileLock: %v", err)
	}
	<-released
	if !ran {
		t.Fatalf("fn did not run after the holder released")
	}
	if err := holder.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
}
