package instance

import (
	"context"
	"io"

	"github.com/System-rat/mcsmp/cmd/root"
	"github.com/System-rat/mcsmp/internal/config"
	"github.com/System-rat/mcsmp/services"

	"github.com/spf13/cobra"
)

var instanceCmd = &cobra.Command{
	Use:   "instance",
	Short: "Server instance operations (create/delete/list/update/run)",
	Long:  `Server instance operations (create/delete/list/update/run)`,
}

const instanceExample = `  mcsmp instance create survival
  mcsmp instance create creative 1.20.1
  mcsmp instance create preview --snapshot
  mcsmp instance list
  mcsmp instance update survival
  mcsmp instance run survival
  mcsmp instance delete preview`

// loadConnector 创建并加载实例目录中的所有实例
func loadConnector(ctx context.Context, progress bool, output io.Writer) (*services.Connector, error) {
	connector := root.NewConnector(config.Get(), progress, output)
	if err := connector.Load(ctx); err != nil {
		return nil, err
	}
	return connector, nil
}

func init() {
	root.RootCmd.AddCommand(instanceCmd)

	instanceCmd.Example = instanceExample
}
