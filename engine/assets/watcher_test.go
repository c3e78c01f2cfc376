package assets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsModelPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"models/cube.obj", true},
		{"models/scene.gltf", true},
		{"models/scene.glb", true},
		{"models/scene.fbx", false},
		{"textures/wood.png", false},
		{"notes.txt", false},
		{"obj", false},
	}
	for _, test := range tests {
		if got := IsModelPath(test.path); got != test.want {
			t.Errorf("IsModelPath(%q) = %v, want %v", test.path, got, test.want)
		}
	}
}

func TestWatcherIndexesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "props")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	model := filepath.Join(dir, "cube.obj")
	nestedModel := filepath.Join(nested, "chair.glb")
	texture := filepath.Join(dir, "wood.png")
	for _, path := range []string{model, nestedModel, texture} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := w.Initialize([]string{dir}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if !w.Contains(model) {
		t.Errorf("index is missing %s", model)
	}
	if !w.Contains(nestedModel) {
		t.Errorf("index is missing %s", nestedModel)
	}
	if w.Contains(texture) {
		t.Errorf("index holds non-model file %s", texture)
	}
	if got := len(w.Paths()); got != 2 {
		t.Errorf("indexed %d files, want 2: %v", got, w.Paths())
	}
}

func TestWatcherSkipsMissingSearchPath(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "cube.obj")
	if err := os.WriteFile(model, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := w.Initialize([]string{filepath.Join(dir, "absent"), dir}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if !w.Contains(model) {
		t.Errorf("index is missing %s", model)
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := w.Initialize([]string{"assets"}); err == nil {
		t.Error("Initialize succeeded on a closed watcher")
	}
}
