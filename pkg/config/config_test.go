package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Extra string `yaml:"extra"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("CFG_TEST_NAME", "notes")
	p := writeFile(t, "name: ${CFG_TEST_NAME}\nport: 8080\n")

	s := sample{Extra: "default"}
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "notes" || s.Port != 8080 || s.Extra != "default" {
		t.Errorf("got %+v", s)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	p := writeFile(t, "port: 1\nbogus: true\n")
	var s sample
	if err := Load(p, &s); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestLoadRunsValidator(t *testing.T) {
	p := writeFile(t, "port: 0\n")
	var s sample
	err := Load(p, &s)
	if err == nil || !strings.Contains(err.Error(), "config validation failed") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	p := writeFile(t, "")
	s := sample{Port: 3}
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Port != 3 {
		t.Errorf("port = %d", s.Port)
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	s := sample{Port: 9}
	found, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &s)
	if err != nil || found {
		t.Fatalf("found=%v err=%v", found, err)
	}

	s = sample{}
	if _, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &s); err == nil {
		t.Error("defaults should still be validated")
	}
}
