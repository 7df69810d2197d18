package cmd

import (
	"fmt"
	"net/http"

	"github.com/codesolver/codesolver/internal/server"
	"github.com/spf13/cobra"
)

var flagAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP solve API",
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := buildComponents()
			if err != nil {
				return err
			}
			addr := comps.cfg.Server.Addr
			if flagAddr != "" {
				addr = flagAddr
			}
			srv := server.New(comps.solver, comps.store, comps.pricing, comps.opts, comps.cfg.Server)
			fmt.Printf("Listening on %s (model: %s)\n", addr, comps.cfg.Generator.Model)
			return http.ListenAndServe(addr, srv.Handler())
		},
	}
	cmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides config)")
	return cmd
}
