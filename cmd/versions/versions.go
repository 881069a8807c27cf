package versions

import (
	"context"
	"fmt"

	"github.com/System-rat/mcsmp/cmd/root"
	"github.com/System-rat/mcsmp/internal/config"
	"github.com/System-rat/mcsmp/internal/versions"

	"github.com/spf13/cobra"
)

var (
	listSnapshots bool
	listLimit     int
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Query the game version manifest",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List known versions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listVersions(cmd.Context())
	},
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the latest release and snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		catalog := newCatalog()
		for _, ch := range []versions.Channel{versions.ChannelRelease, versions.ChannelSnapshot} {
			v, err := catalog.Latest(ctx, ch)
			if err != nil {
				return err
			}
			fmt.Printf("%-9s %s\n", ch, v.ID)
		}
		return nil
	},
}

func newCatalog() *versions.Catalog {
	cfg := config.Get()
	return versions.NewCatalog(versions.CatalogConfig{
		ManifestURL: cfg.Versions.ManifestURL,
		Timeout:     cfg.Versions.TimeoutDuration(),
	})
}

/**
 * Print version ids of one channel
 * @param {context.Context} ctx - Command context
 * @returns {error} Returns error if the manifest cannot be fetched
 * @description
 * - Prints releases, or snapshots with --snapshot
 * - --limit keeps the newest N entries, 0 prints all
 */
func listVersions(ctx context.Context) error {
	catalog := newCatalog()
	var list []*versions.Version
	var err error
	if listSnapshots {
		list, err = catalog.Snapshots(ctx)
	} else {
		list, err = catalog.Releases(ctx)
	}
	if err != nil {
		return err
	}
	if listLimit > 0 && len(list) > listLimit {
		list = list[:listLimit]
	}
	for _, v := range list {
		fmt.Println(v.ID)
	}
	return nil
}

func init() {
	listCmd.Flags().BoolVarP(&listSnapshots, "snapshot", "s", false, "List snapshots instead of releases")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum number of versions, 0 for all")
	versionsCmd.AddCommand(listCmd)
	versionsCmd.AddCommand(latestCmd)
	root.RootCmd.AddCommand(versionsCmd)
}
