// Package installer writes a resolved install plan's files into a project.
// Installation is best-effort per file: an existing file is skipped unless
// overwrite is requested, a failed write is recorded and the remaining files
// still go in, and nothing is rolled back. Re-running an install is therefore
// always safe. The installer never invokes a package manager; the report
// carries the merged npm dependency sets as a hint for the user.
package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oonkoo/oonkoo-registry/internal/cliconfig"
	"github.com/oonkoo/oonkoo-registry/internal/db/models"
	"github.com/oonkoo/oonkoo-registry/internal/resolver"
)

// Options controls an install run.
type Options struct {
	// Overwrite replaces files that already exist instead of skipping them.
	Overwrite bool
}

// Failure is one file that could not be written.
type Failure struct {
	Path string
	Err  error
}

// Report summarizes an install run. Paths are relative to the project root.
type Report struct {
	Written []string
	Skipped []string
	Failed  []Failure

	// Merged npm dependency sets across the installed components, for the
	// user to pass to their package manager.
	NPMDependencies    []string
	NPMDevDependencies []string
}

// Ok reports whether every file was written or deliberately skipped.
func (r *Report) Ok() bool {
	return len(r.Failed) == 0
}

// Install writes all files of the plan's components into projectRoot,
// dependencies first (the plan is already ordered).
func Install(plan *resolver.InstallPlan, projectRoot string, project *cliconfig.Project, opts Options) *Report {
	report := &Report{
		NPMDependencies:    plan.NPMDependencies,
		NPMDevDependencies: plan.NPMDevDependencies,
	}

	for _, component := range plan.Components {
		for i := range component.Files {
			file := &component.Files[i]
			rel := targetPath(file, project)
			abs := filepath.Join(projectRoot, rel)

			if _, err := os.Stat(abs); err == nil && !opts.Overwrite {
				report.Skipped = append(report.Skipped, rel)
				continue
			}

			if err := writeFile(abs, file.Content); err != nil {
				report.Failed = append(report.Failed, Failure{Path: rel, Err: err})
				continue
			}
			report.Written = append(report.Written, rel)
		}
	}

	return report
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// targetPath resolves where a file lands relative to the project root. With
// no project config the registry's published target path is used verbatim;
// with one, the directory comes from the kind's alias and the extension
// follows the TypeScript flag.
func targetPath(file *models.ComponentFile, project *cliconfig.Project) string {
	if project == nil {
		return filepath.FromSlash(file.TargetPath)
	}

	var dir string
	switch file.Kind {
	case "util":
		dir = project.Aliases.Utils
	case "hook":
		dir = project.Aliases.Hooks
	default: // component, style
		dir = project.Aliases.Components
	}

	name := file.Name
	if !project.TypeScript {
		name = jsxName(name)
	}
	return filepath.Join(filepath.FromSlash(dir), name)
}

// jsxName rewrites TypeScript extensions for JavaScript projects.
func jsxName(name string) string {
	switch {
	case strings.HasSuffix(name, ".tsx"):
		return strings.TrimSuffix(name, ".tsx") + ".jsx"
	case strings.HasSuffix(name, ".ts"):
		return strings.TrimSuffix(name, ".ts") + ".js"
	}
	return name
}
