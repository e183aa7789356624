package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/uplink/pkg/app"
)

var (
	serveCmd = &cobra.Command{
		Use:     "serve",
		Short:   "start the upload link HTTP service",
		Aliases: []string{"run", "server"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app.NewApp(configPath)
			defer a.Close()

			return a.Run()
		},
	}
)

// registerServeCommands 注册服务启动命令.
func registerServeCommands() {
	rootCmd.AddCommand(serveCmd)
}
