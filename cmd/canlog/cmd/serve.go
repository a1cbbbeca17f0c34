package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tracebus/canlog/pkg/api"
)

var (
	serveBind string
	servePort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve <capture>",
	Short: "Serve a capture file over HTTP",
	Long: `Run an HTTP server exposing a capture file: summary statistics,
a record stream and Prometheus metrics.

Example:
  canlog serve capture.csv
  canlog serve --bind 0.0.0.0 --port 9090 capture.csv.zst`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bind := serveBind
		if !cmd.Flags().Changed("bind") {
			bind = cfg.Server.Bind
		}
		port := servePort
		if !cmd.Flags().Changed("port") {
			port = cfg.Server.Port
		}

		server := api.NewServer(args[0], log)
		return server.ListenAndServe(bind, port)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveBind, "bind", "127.0.0.1", "Bind address")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Listen port")
}
