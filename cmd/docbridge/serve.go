package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/viant/docbridge/internal/idgen"
	"github.com/viant/docbridge/service/host"
	"github.com/viant/docbridge/service/transport"
	"github.com/viant/docbridge/service/transport/ws"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose a document host over websocket",
	Long:  `Each websocket connection on /host gets its own host session. Process metrics are served on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		mux := http.NewServeMux()
		mux.Handle("/host", ws.Handler(func(ctx context.Context, endpoint transport.Endpoint) {
			session := idgen.New()
			log.Printf("host session %v started", session)
			if err := host.New(host.WithSession(session)).Serve(ctx, endpoint); err != nil {
				log.Printf("host session %v: %v", session, err)
			}
			log.Printf("host session %v ended", session)
		}))
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: addr, Handler: mux}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Starting docbridge host on %s\n", addr)
			serverErrors <- srv.ListenAndServe()
		}()
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return srv.Close()
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8787", "listen address")
}
