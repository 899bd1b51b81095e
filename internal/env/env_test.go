package env

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	root := t.TempDir()
	content := "UNITREE_ROS_DIR=deps/ros\nUNITREE_MODEL_DIR=\"deps/model\"\nEMPTY=\n"
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("UNITREE_MODEL_DIR", "/from/env")

	s, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if v, ok := s.Lookup("UNITREE_ROS_DIR"); !ok || v != "deps/ros" {
		t.Errorf("Lookup(UNITREE_ROS_DIR) = %q, %v", v, ok)
	}
	if v, ok := s.Lookup("UNITREE_MODEL_DIR"); !ok || v != "/from/env" {
		t.Errorf("Lookup(UNITREE_MODEL_DIR) = %q, %v; process environment should win", v, ok)
	}
	if _, ok := s.Lookup("EMPTY"); ok {
		t.Error("Lookup(EMPTY) reported an empty value as set")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := s.Lookup("BLOCKTOGGLE_TEST_UNSET_KEY"); ok {
		t.Error("Lookup() found a key in an empty source")
	}
}
