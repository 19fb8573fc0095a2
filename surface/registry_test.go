// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"image/color"
	"testing"
)

func imageFactory(opts Options) (Surface, error) {
	return NewImageSurface(opts.Width, opts.Height), nil
}

// TestRegistryList tests listing backends.
func TestRegistryList(t *testing.T) {
	r := NewRegistry()

	r.Register("low", 10, imageFactory)
	r.Register("high", 100, imageFactory)
	r.Register("mid", 50, imageFactory)

	list := r.List()
	want := []string{"high", "mid", "low"}
	if len(list) != len(want) {
		t.Fatalf("expected %d backends, got %d", len(want), len(list))
	}
	for i := range want {
		if list[i] != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, list[i], want[i])
		}
	}
}

// TestRegistryUnregister tests backend removal.
func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register("temp", 10, imageFactory)
	r.Unregister("temp")

	if _, err := r.NewByName("temp", Options{Width: 1, Height: 1}); err == nil {
		t.Error("backend should not exist after unregister")
	}
}

func TestRegistryFallback(t *testing.T) {
	r := NewRegistry()
	failing := errors.New("no display")
	r.Register("broken", 100, func(Options) (Surface, error) { return nil, failing })
	r.Register("image", 10, imageFactory)

	s, err := r.New(Options{Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.Bounds().Dx() != 4 {
		t.Errorf("fallback surface width = %d, want 4", s.Bounds().Dx())
	}
}

func TestRegistryErrors(t *testing.T) {
	r := NewRegistry()
	if _, err := r.New(Options{Width: 1, Height: 1}); !errors.Is(err, ErrNoBackendAvailable) {
		t.Errorf("empty registry error = %v, want ErrNoBackendAvailable", err)
	}

	var nf *BackendNotFoundError
	if _, err := r.NewByName("vulkan", Options{Width: 1, Height: 1}); !errors.As(err, &nf) {
		t.Errorf("unknown backend error = %v, want BackendNotFoundError", err)
	}

	r.Register("image", 10, imageFactory)
	if _, err := r.NewByName("image", Options{}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("zero size error = %v, want ErrInvalidSize", err)
	}
}

// TestGlobalImageBackend checks the built-in backend and its background.
func TestGlobalImageBackend(t *testing.T) {
	s, err := NewByName("image", Options{Width: 2, Height: 2, Background: color.RGBA{1, 2, 3, 255}})
	if err != nil {
		t.Fatalf("NewByName(image) error = %v", err)
	}
	defer s.Close()

	if c := s.Snapshot().RGBAAt(1, 1); c != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("background pixel = %v", c)
	}
}
