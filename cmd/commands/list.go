package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oonkoo/oonkoo-registry/internal/cliconfig"
	"github.com/oonkoo/oonkoo-registry/internal/registry"
)

var (
	listQuery    string
	listType     string
	listTier     string
	listCategory string
	listTags     []string
	listPage     int
	listLimit    int
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse components in the registry",
		Long: `List components available in the registry.

Examples:
  # All components, first page
  oonkoo list

  # Free blocks tagged "hero"
  oonkoo list --type block --tier free --tags hero

  # Search by name
  oonkoo list -q pricing`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	cmd.Flags().StringVarP(&listQuery, "query", "q", "", "Search name and description")
	cmd.Flags().StringVar(&listType, "type", "", "Filter by type (component, block, template)")
	cmd.Flags().StringVar(&listTier, "tier", "", "Filter by tier (free, pro, premium)")
	cmd.Flags().StringVar(&listCategory, "category", "", "Filter by category")
	cmd.Flags().StringSliceVar(&listTags, "tags", nil, "Filter by tags (match any)")
	cmd.Flags().IntVar(&listPage, "page", 1, "Result page")
	cmd.Flags().IntVar(&listLimit, "limit", 0, "Results per page")
	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
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

	components, meta, err := client.FetchIndex(cmd.Context(), registry.IndexFilter{
		Query:    listQuery,
		Type:     listType,
		Tier:     listTier,
		Category: listCategory,
		Tags:     listTags,
		Page:     listPage,
		Limit:    listLimit,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(components) == 0 {
		fmt.Fprintln(out, "No components match.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tTYPE\tTIER\tCATEGORY\tDESCRIPTION")
	for _, c := range components {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.Slug, c.Type, c.Tier, c.Category, truncate(c.Description, 60))
	}
	w.Flush()

	fmt.Fprintf(out, "\nPage %d — showing %d of %d components", meta.Page, len(components), meta.Total)
	if meta.HasMore {
		fmt.Fprintf(out, " (use --page %d for more)", meta.Page+1)
	}
	fmt.Fprintln(out)
	return nil
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
