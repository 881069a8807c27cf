package instance

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/System-rat/mcsmp/internal/logger"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a server in the foreground",
	Long:  "Run a server with its console attached: output is printed, stdin lines are sent as commands and Ctrl-C stops the server gracefully.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstance(cmd.Context(), args[0])
	},
}

/**
 * Run a server with the terminal as its console
 * @param {context.Context} ctx - Command context
 * @param {string} name - Instance name
 * @returns {error} Returns error if the server cannot be started
 * @description
 * - Output lines go to stdout
 * - Every stdin line is sent to the server console
 * - SIGINT/SIGTERM sends the stop command and waits for the exit
 */
func runInstance(ctx context.Context, name string) error {
	connector, err := loadConnector(ctx, false, os.Stdout)
	if err != nil {
		return err
	}
	m, err := connector.Server(name)
	if err != nil {
		return err
	}
	if err := connector.StartServer(name); err != nil {
		return err
	}
	defer m.Instance.StopWatcher()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if err := connector.SendCommand(name, scanner.Text()); err != nil {
				logger.Warnf("Command not sent: %v", err)
				return
			}
		}
	}()

	exited := make(chan struct{})
	go func() {
		m.Runner.Wait()
		close(exited)
	}()

	select {
	case <-exited:
	case <-sigCtx.Done():
		fmt.Println("Stopping server...")
		if err := connector.StopServer(context.Background(), name); err != nil {
			return err
		}
	}
	d := m.Runner.GetDetail()
	fmt.Printf("Server '%s' %s: %s\n", name, d.Status, d.LastExitReason)
	return nil
}

func init() {
	instanceCmd.AddCommand(runCmd)
}
