// Package cliconfig reads and writes the CLI's two local files: the per-
// project oonkoo.yaml (where installed files land, TypeScript or not) and the
// per-user credentials file. Both are plain YAML; the credentials file is
// written 0600 because it holds a raw bearer token.
package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the per-project config filename, looked up in the project root.
const ProjectFile = "oonkoo.yaml"

// credentialsDir and credentialsFile locate the per-user token under $HOME.
const (
	credentialsDir  = ".oonkoo"
	credentialsFile = "credentials.yaml"
)

// Aliases maps component file kinds to project directories.
type Aliases struct {
	Components string `yaml:"components"`
	Utils      string `yaml:"utils"`
	Hooks      string `yaml:"hooks"`
}

// Project is the per-project configuration.
type Project struct {
	// Style selects the component flavor when the registry publishes variants.
	Style string `yaml:"style"`
	// TypeScript controls whether installed files keep .tsx/.ts extensions or
	// are renamed to .jsx/.js.
	TypeScript bool `yaml:"typescript"`
	Aliases    Aliases `yaml:"aliases"`
	// RegistryURL overrides the production registry, mainly for self-hosting.
	RegistryURL string `yaml:"registry_url,omitempty"`
}

// DefaultProject returns the config written by `oonkoo init`.
func DefaultProject() *Project {
	return &Project{
		Style:      "default",
		TypeScript: true,
		Aliases: Aliases{
			Components: "components",
			Utils:      "lib",
			Hooks:      "hooks",
		},
	}
}

// LoadProject reads oonkoo.yaml from the project root.
// Returns (nil, nil) when the file does not exist.
func LoadProject(root string) (*Project, error) {
	raw, err := os.ReadFile(filepath.Join(root, ProjectFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ProjectFile, err)
	}

	project := DefaultProject()
	if err := yaml.Unmarshal(raw, project); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ProjectFile, err)
	}
	return project, nil
}

// SaveProject writes oonkoo.yaml to the project root.
func SaveProject(root string, project *Project) error {
	raw, err := yaml.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", ProjectFile, err)
	}
	if err := os.WriteFile(filepath.Join(root, ProjectFile), raw, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ProjectFile, err)
	}
	return nil
}

// Credentials is the per-user stored login.
type Credentials struct {
	Token string `yaml:"token"`
}

// CredentialsPath returns the per-user credentials file location.
func CredentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, credentialsDir, credentialsFile), nil
}

// LoadCredentials reads the stored token. Returns (nil, nil) when the user
// has never logged in.
func LoadCredentials() (*Credentials, error) {
	path, err := CredentialsPath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(raw, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return &creds, nil
}

// SaveCredentials stores a token, creating ~/.oonkoo with owner-only
// permissions. The file is 0600: it holds a raw bearer token.
func SaveCredentials(token string) error {
	path, err := CredentialsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	raw, err := yaml.Marshal(&Credentials{Token: token})
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// DeleteCredentials removes the stored token. Deleting an absent file is not
// an error: logout is idempotent.
func DeleteCredentials() error {
	path, err := CredentialsPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}
