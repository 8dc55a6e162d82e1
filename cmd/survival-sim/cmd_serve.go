package main

import (
	"fmt"

	"survival-sim/internal/api"
	"survival-sim/internal/config"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and websocket event stream",
		Example: `  survival-sim serve
  survival-sim serve --addr :3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := config.ParseEnv()
			if err != nil {
				return err
			}

			cfg := api.DefaultConfig()
			cfg.Addr = env.Addr
			if cmd.Flags().Changed("addr") {
				cfg.Addr, _ = cmd.Flags().GetString("addr")
			}
			cfg.StoreCapacity, _ = cmd.Flags().GetInt("keep")

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "survival-sim - API Server")
			fmt.Fprintln(out, "=========================")
			fmt.Fprintf(out, "Listening on %s\n", cfg.Addr)
			fmt.Fprintln(out, "Press Ctrl+C to stop")

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			return api.NewServer(cfg).Start(ctx)
		},
	}
	cmd.Flags().String("addr", ":8080", "サーバーアドレス (例: :8080, 0.0.0.0:3000)")
	cmd.Flags().Int("keep", 50, "保持する実行結果の数")
	return cmd
}
