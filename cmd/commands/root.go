// Package commands defines the oonkoo CLI command tree.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/oonkoo/oonkoo-registry/internal/cliconfig"
	"github.com/oonkoo/oonkoo-registry/internal/registry"
)

var registryURLFlag string

// NewRootCommand builds the oonkoo command and its subcommands.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "oonkoo",
		Short: "Install OonkoO UI components into your project",
		Long: `oonkoo adds components from the OonkoO registry to your project.

Components are copied into your source tree as plain files — you own them
after installation. Registry dependencies are resolved automatically and
installed first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&registryURLFlag, "registry", "", "registry URL override")

	root.AddCommand(
		NewInitCommand(),
		NewAddCommand(),
		NewListCommand(),
		NewLoginCommand(),
		NewLogoutCommand(),
		NewVersionCommand(version),
	)
	return root
}

// registryURL picks the registry endpoint: flag, then environment, then
// project config, then the production default.
func registryURL(project *cliconfig.Project) string {
	if registryURLFlag != "" {
		return registryURLFlag
	}
	if env := os.Getenv("OONKOO_REGISTRY_URL"); env != "" {
		return env
	}
	if project != nil && project.RegistryURL != "" {
		return project.RegistryURL
	}
	return ""
}

// newClient builds a registry client using the stored credential, if any.
func newClient(project *cliconfig.Project) (*registry.Client, error) {
	creds, err := cliconfig.LoadCredentials()
	if err != nil {
		return nil, err
	}
	token := ""
	if creds != nil {
		token = creds.Token
	}
	return registry.New(registryURL(project), token), nil
}
