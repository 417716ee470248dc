package commands

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/oonkoo/oonkoo-registry/internal/cliauth"
	"github.com/oonkoo/oonkoo-registry/internal/cliconfig"
	"github.com/oonkoo/oonkoo-registry/internal/registry"
)

var loginAPIKey string

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the registry",
		Long: `Sign in to the OonkoO registry.

By default this opens your browser to complete sign-in; the CLI waits for
you to finish there. To sign in without a browser, pass an API key created
in your account settings:

  oonkoo login --api-key oonkoo_...`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}

	cmd.Flags().StringVar(&loginAPIKey, "api-key", "", "Authenticate with an API key instead of the browser")
	return cmd
}

func runLogin(cmd *cobra.Command, _ []string) error {
	project, err := currentProject()
	if err != nil {
		return err
	}

	if loginAPIKey != "" {
		return loginWithAPIKey(cmd, project, loginAPIKey)
	}
	return loginWithBrowser(cmd, project)
}

func loginWithAPIKey(cmd *cobra.Command, project *cliconfig.Project, key string) error {
	if err := cliauth.ValidateAPIKey(key); err != nil {
		return err
	}

	// Confirm the key against the registry before storing it, so a revoked
	// key is caught at login rather than on the first add.
	client := registry.New(registryURL(project), key)
	identity, err := client.VerifyToken(cmd.Context())
	if err != nil {
		return fmt.Errorf("API key verification failed: %w", err)
	}

	if err := cliconfig.SaveCredentials(key); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s).\n", identity.Name, identity.Email)
	return nil
}

func loginWithBrowser(cmd *cobra.Command, project *cliconfig.Project) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client := registry.New(registryURL(project), "")
	token, err := cliauth.Login(ctx, client, cliauth.Options{Out: cmd.OutOrStdout()})
	if err != nil {
		return err
	}

	if err := cliconfig.SaveCredentials(token); err != nil {
		return err
	}
	path, _ := cliconfig.CredentialsPath()
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in. Credentials saved to %s.\n", path)
	return nil
}

func currentProject() (*cliconfig.Project, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine current directory: %w", err)
	}
	return cliconfig.LoadProject(root)
}
