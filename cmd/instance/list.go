package instance

import (
	"fmt"

	"github.com/System-rat/mcsmp/internal/utils"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [filter]",
	Short: "List server instances",
	Long:  "List server instances in the instances path. A filter keeps only names containing it (case-insensitive).",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ""
		if len(args) > 0 {
			filter = args[0]
		}
		connector, err := loadConnector(cmd.Context(), false, nil)
		if err != nil {
			return err
		}
		servers := connector.Servers(filter)
		if len(servers) == 0 {
			fmt.Println("No instances found")
			return nil
		}
		var rows [][]interface{}
		for _, m := range servers {
			d := m.Detail(false)
			rows = append(rows, []interface{}{d.Name, d.Version, d.Channel, d.Autostart, d.Path})
		}
		utils.PrintTable(nil, []string{"Name", "Version", "Channel", "Autostart", "Path"}, rows)
		return nil
	},
}

func init() {
	instanceCmd.AddCommand(listCmd)
}
