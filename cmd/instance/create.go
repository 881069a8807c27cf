package instance

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	createSnapshot  bool
	createAutostart bool
)

var createCmd = &cobra.Command{
	Use:   "create <name> [version]",
	Short: "Create a server instance and download its server.jar",
	Long:  "Create a server instance directory in the instances path. Without a version the latest release (or snapshot with --snapshot) is used.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		version := ""
		if len(args) > 1 {
			version = args[1]
		}
		return createInstance(cmd.Context(), args[0], version)
	},
}

/**
 * Create an instance and print where it was created
 * @param {context.Context} ctx - Command context
 * @param {string} name - Instance name
 * @param {string} version - Version id, empty for the latest
 * @returns {error} Returns error if resolution, download or file writes fail
 */
func createInstance(ctx context.Context, name, version string) error {
	connector, err := loadConnector(ctx, true, nil)
	if err != nil {
		return err
	}
	fmt.Printf("Downloading server for '%s'\n", name)
	m, err := connector.CreateServer(ctx, name, version, createSnapshot)
	fmt.Println()
	if err != nil {
		return err
	}
	if createAutostart {
		if err := m.Instance.SetAutostart(true); err != nil {
			return err
		}
	}
	v := m.Instance.Version()
	fmt.Printf("Created '%s' (%s %s) at %s\n", m.Name(), v.Channel, v.ID, m.Instance.PhysicalPath())
	return nil
}

func init() {
	createCmd.Flags().BoolVarP(&createSnapshot, "snapshot", "s", false, "Use the latest snapshot when no version is given")
	createCmd.Flags().BoolVarP(&createAutostart, "autostart", "a", false, "Start the server when 'mcsmp server' starts")
	instanceCmd.AddCommand(createCmd)
}
