package instance

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a server instance directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		connector, err := loadConnector(ctx, false, nil)
		if err != nil {
			return err
		}
		if err := connector.DeleteServer(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted '%s'\n", args[0])
		return nil
	},
}

func init() {
	instanceCmd.AddCommand(deleteCmd)
}
