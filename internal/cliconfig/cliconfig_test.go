package cliconfig

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestProjectRoundTrip(t *testing.T) {
	root := t.TempDir()

	project := DefaultProject()
	project.TypeScript = false
	project.Aliases.Components = "src/components"

	if err := SaveProject(root, project); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}

	loaded, err := LoadProject(root)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected project, got nil")
	}
	if loaded.TypeScript {
		t.Error("TypeScript = true, want false")
	}
	if loaded.Aliases.Components != "src/components" {
		t.Errorf("Aliases.Components = %s", loaded.Aliases.Components)
	}
	if loaded.Style != "default" {
		t.Errorf("Style = %s, want default", loaded.Style)
	}
}

func TestLoadProject_AbsentIsNilNil(t *testing.T) {
	project, err := LoadProject(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if project != nil {
		t.Error("expected nil for missing config")
	}
}

func TestLoadProject_PartialFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	content := "typescript: false\n"
	if err := os.WriteFile(filepath.Join(root, ProjectFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	project, err := LoadProject(root)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if project.TypeScript {
		t.Error("TypeScript = true, want false")
	}
	if project.Aliases.Components != "components" {
		t.Errorf("Aliases.Components = %s, want default", project.Aliases.Components)
	}
}

func TestCredentialsRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := SaveCredentials("cli_sometoken"); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}

	creds, err := LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds == nil || creds.Token != "cli_sometoken" {
		t.Fatalf("creds = %+v", creds)
	}

	if runtime.GOOS != "windows" {
		path, _ := CredentialsPath()
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("credentials mode = %o, want 0600", info.Mode().Perm())
		}
	}
}

func TestLoadCredentials_AbsentIsNilNil(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	creds, err := LoadCredentials()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds != nil {
		t.Error("expected nil for missing credentials")
	}
}

func TestDeleteCredentials_Idempotent(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := SaveCredentials("cli_sometoken"); err != nil {
		t.Fatal(err)
	}
	if err := DeleteCredentials(); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := DeleteCredentials(); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	creds, err := LoadCredentials()
	if err != nil || creds != nil {
		t.Errorf("after delete: creds = %+v, err = %v", creds, err)
	}
}
