package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oonkoo/oonkoo-registry/internal/cliconfig"
	"github.com/oonkoo/oonkoo-registry/internal/installer"
	"github.com/oonkoo/oonkoo-registry/internal/resolver"
)

var addOverwrite bool

// NewAddCommand creates the add command.
func NewAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <component>...",
		Short: "Add components and their dependencies to your project",
		Long: `Add one or more components from the registry to your project.

Registry dependencies are resolved and installed first. Files that already
exist are left untouched unless --overwrite is given.

Examples:
  # Add a single component
  oonkoo add hero-a

  # Add several at once
  oonkoo add hero-a pricing-table

  # Replace files you have modified
  oonkoo add hero-a --overwrite`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAdd,
	}

	cmd.Flags().BoolVar(&addOverwrite, "overwrite", false, "Overwrite files that already exist")
	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine current directory: %w", err)
	}

	project, err := cliconfig.LoadProject(root)
	if err != nil {
		return err
	}

	client, err := newClient(project)
	if err != nil {
		return err
	}

	plan, err := resolver.New(client).Resolve(cmd.Context(), args)
	if err != nil {
		return err
	}

	if len(plan.Components) > len(args) {
		fmt.Fprintf(cmd.OutOrStdout(), "Installing %d components (%d requested + dependencies): %s\n",
			len(plan.Components), len(args), strings.Join(plan.Slugs(), ", "))
	}

	report := installer.Install(plan, root, project, installer.Options{Overwrite: addOverwrite})
	printReport(cmd, report)

	if !report.Ok() {
		return fmt.Errorf("%d file(s) could not be written", len(report.Failed))
	}
	return nil
}

func printReport(cmd *cobra.Command, report *installer.Report) {
	out := cmd.OutOrStdout()

	for _, path := range report.Written {
		fmt.Fprintf(out, "  ✓ %s\n", path)
	}
	for _, path := range report.Skipped {
		fmt.Fprintf(out, "  - %s (exists, skipped)\n", path)
	}
	for _, failure := range report.Failed {
		fmt.Fprintf(cmd.ErrOrStderr(), "  ✗ %s: %v\n", failure.Path, failure.Err)
	}

	if len(report.NPMDependencies) > 0 {
		fmt.Fprintf(out, "\nInstall the npm dependencies:\n\n  npm install %s\n",
			strings.Join(report.NPMDependencies, " "))
	}
	if len(report.NPMDevDependencies) > 0 {
		fmt.Fprintf(out, "\nAnd the dev dependencies:\n\n  npm install -D %s\n",
			strings.Join(report.NPMDevDependencies, " "))
	}
}
