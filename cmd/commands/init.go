package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oonkoo/oonkoo-registry/internal/cliconfig"
)

var initForce bool

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an oonkoo.yaml in the current directory",
		Long: `Write a default oonkoo.yaml to the current directory.

The config controls where installed files land (components, lib, hooks)
and whether TypeScript sources are kept as-is. Edit it to match your
project layout before running add.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config")
	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine current directory: %w", err)
	}

	existing, err := cliconfig.LoadProject(root)
	if err != nil {
		return err
	}
	if existing != nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cliconfig.ProjectFile)
	}

	if err := cliconfig.SaveProject(root, cliconfig.DefaultProject()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s.\n", cliconfig.ProjectFile)
	return nil
}
