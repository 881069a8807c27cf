package remote

import (
	"fmt"
	"strings"

	"github.com/System-rat/mcsmp/cmd/root"
	"github.com/System-rat/mcsmp/internal/config"
	"github.com/System-rat/mcsmp/internal/models"
	"github.com/System-rat/mcsmp/internal/rpc"
	"github.com/System-rat/mcsmp/internal/utils"

	"github.com/spf13/cobra"
)

var (
	remoteAddr string
	logLimit   int
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Control servers through a running 'mcsmp server'",
}

const remoteExample = `  mcsmp remote list
  mcsmp remote start survival
  mcsmp remote command survival say hello
  mcsmp remote log survival -n 20
  mcsmp remote stop survival
  mcsmp remote list --addr 192.168.1.10:1337`

func newClient() *rpc.Client {
	addr := remoteAddr
	if addr == "" {
		addr = config.Get().Server.Address
	}
	return rpc.NewClient(rpc.DefaultHTTPConfig(addr))
}

func printServers(servers []models.ServerDetail) error {
	if len(servers) == 0 {
		fmt.Println("No servers found")
		return nil
	}
	var rows [][]interface{}
	for _, s := range servers {
		status := string(s.Runner.Status)
		if status == "" {
			status = "-"
		}
		rows = append(rows, []interface{}{s.Name, s.Version, status, s.Runner.Pid, s.Autostart})
	}
	utils.PrintTable(nil, []string{"Name", "Version", "Status", "Pid", "Autostart"}, rows)
	return nil
}

var listCmd = &cobra.Command{
	Use:   "list [filter]",
	Short: "List servers known to the running manager",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ""
		if len(args) > 0 {
			filter = args[0]
		}
		servers, err := newClient().Servers(cmd.Context(), filter)
		if err != nil {
			return err
		}
		return printServers(servers)
	},
}

var startCmd = &cobra.Command{
	Use:   "start <name>",
	Short: "Start a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newClient().Start(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Started '%s' (pid %d)\n", d.Name, d.Runner.Pid)
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <name>",
	Short: "Stop a server and wait for it to exit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newClient().Stop(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Server '%s' %s\n", d.Name, d.Runner.Status)
		return nil
	},
}

var commandCmd = &cobra.Command{
	Use:   "command <name> <command...>",
	Short: "Send a console command",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient().Command(cmd.Context(), args[0], strings.Join(args[1:], " "))
	},
}

var logCmd = &cobra.Command{
	Use:   "log <name>",
	Short: "Print the newest output lines of a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newClient().Log(cmd.Context(), args[0], logLimit)
		if err != nil {
			return err
		}
		for _, line := range log.Lines {
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	remoteCmd.PersistentFlags().StringVar(&remoteAddr, "addr", "", "Manager address, defaults to server.address")
	logCmd.Flags().IntVarP(&logLimit, "lines", "n", 100, "Number of lines")
	remoteCmd.AddCommand(listCmd, startCmd, stopCmd, commandCmd, logCmd)
	root.RootCmd.AddCommand(remoteCmd)

	remoteCmd.Example = remoteExample
}
