package instance

import (
	"fmt"

	"github.com/spf13/cobra"
)

var updateSnapshot bool

var updateCmd = &cobra.Command{
	Use:   "update <name> [version]",
	Short: "Download another server.jar for an instance",
	Long:  "Download the given version, or the latest release (snapshot with --snapshot), unless the instance already has it.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		version := ""
		if len(args) > 1 {
			version = args[1]
		}
		connector, err := loadConnector(ctx, true, nil)
		if err != nil {
			return err
		}
		updated, err := connector.UpdateServer(ctx, args[0], version, updateSnapshot)
		if err != nil {
			return err
		}
		m, err := connector.Server(args[0])
		if err != nil {
			return err
		}
		if !updated {
			fmt.Printf("'%s' is already at %s\n", args[0], m.Instance.Version().ID)
			return nil
		}
		fmt.Printf("\nUpdated '%s' to %s\n", args[0], m.Instance.Version().ID)
		return nil
	},
}

func init() {
	updateCmd.Flags().BoolVarP(&updateSnapshot, "snapshot", "s", false, "Use the latest snapshot when no version is given")
	instanceCmd.AddCommand(updateCmd)
}
