package keymap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleKeymapJSON = `{
	"name": "my-shortcuts",
	"scope": "editor",
	"priority": 10,
	"bindings": [
		{"keys": "primary+b", "action": "format.bold", "description": "Bold"},
		{"keys": "primary+k primary+l", "action": "block.convertToList",
		 "when": "hasBlockSelection", "args": {"ordered": false}}
	]
}`

func TestLoadReader(t *testing.T) {
	km, err := NewLoader().LoadReader(strings.NewReader(sampleKeymapJSON))
	if err != nil {
		t.Fatalf("LoadReader() error = %v", err)
	}

	if km.Name != "my-shortcuts" {
		t.Errorf("Name = %q, want my-shortcuts", km.Name)
	}
	if km.Scope != ScopeEditor {
		t.Errorf("Scope = %q, want editor", km.Scope)
	}
	if km.Priority != 10 {
		t.Errorf("Priority = %d, want 10", km.Priority)
	}
	if km.Source != "user" {
		t.Errorf("Source = %q, want user default", km.Source)
	}
	if len(km.Bindings) != 2 {
		t.Fatalf("len(Bindings) = %d, want 2", len(km.Bindings))
	}

	b := km.Bindings[1]
	if b.Keys != "primary+k primary+l" || b.Action != "block.convertToList" {
		t.Errorf("binding = %+v", b)
	}
	if b.When != "hasBlockSelection" {
		t.Errorf("When = %q", b.When)
	}
	if v, ok := b.Args["ordered"].(bool); !ok || v {
		t.Errorf("Args[ordered] = %v", b.Args["ordered"])
	}

	if err := km.Validate(); err != nil {
		t.Errorf("loaded keymap should validate: %v", err)
	}
}

func TestLoadReaderInvalidJSON(t *testing.T) {
	if _, err := NewLoader().LoadReader(strings.NewReader("{bindings:")); err == nil {
		t.Error("malformed JSON should error")
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.json":   `{"name": "a", "bindings": [{"keys": "F2", "action": "view.rename"}]}`,
		"b.json":   `{"name": "b", "bindings": []}`,
		"skip.txt": "not a keymap",
		"bad.json": "{",
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	loader := NewLoader()
	loader.AddSearchPath(dir)

	keymaps, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(keymaps) != 2 {
		t.Fatalf("len(keymaps) = %d, want 2 (bad and non-json files skipped)", len(keymaps))
	}
}

func TestLoadAndRegister(t *testing.T) {
	dir := t.TempDir()
	data := `{"name": "user-map", "bindings": [{"keys": "primary+b", "action": "format.bold"}]}`
	if err := os.WriteFile(filepath.Join(dir, "user.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader()
	loader.AddSearchPath(dir)

	reg := NewRegistry()
	if err := loader.LoadAndRegister(reg); err != nil {
		t.Fatalf("LoadAndRegister() error = %v", err)
	}
	if reg.Get("user-map") == nil {
		t.Error("registered keymap should be retrievable")
	}
}
