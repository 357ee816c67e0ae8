package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"github.com/valyala/fasthttp"
	"k8s.io/klog/v2"

	"github.com/ebi-refget/refget-server/config"
	"github.com/ebi-refget/refget-server/httpapi"
	"github.com/ebi-refget/refget-server/indexstore"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, syscall.SIGTERM, syscall.SIGINT)
		select {
		case <-interrupt:
			klog.Info("received interrupt signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(interrupt)
	}()

	app := &cli.App{
		Name:        "refget-server",
		Version:     gitCommitSHA,
		Description: "Refget v2.0.0 reference sequence retrieval server",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "Optional .env file to load before reading configuration",
				EnvVars: []string{"REFGET_ENV_FILE"},
			},
			&cli.StringFlag{
				Name:    "listen",
				Usage:   "Listen address",
				EnvVars: []string{"LISTEN_ADDR"},
				Value:   ":8080",
			},
		}, newKlogFlagSet()...),
		Commands: []*cli.Command{
			newCmd_Version(),
		},
		Action: func(c *cli.Context) error {
			return runServe(ctx, c)
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		klog.Errorf("%s", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context, c *cli.Context) error {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("configuration error: %s", err), 1)
	}
	if c.IsSet("listen") {
		cfg.ListenAddr = c.String("listen")
	}

	store, err := indexstore.OpenCompactStore(cfg.IndexDBPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open index DB %q: %s", cfg.IndexDBPath, err), 1)
	}
	defer store.Close()

	server := httpapi.NewServer(store, cfg, gitCommitSHA)
	defer server.Cache.CloseAll()

	handler := server.Handler()

	klog.Infof("refget-server listening on %s", cfg.ListenAddr)

	s := &fasthttp.Server{
		Handler:            handler,
		MaxRequestBodySize: 1024 * 1024,
	}
	go func() {
		<-ctx.Done()
		klog.Info("refget-server shutting down...")
		if err := s.ShutdownWithContext(ctx); err != nil {
			klog.Errorf("error while shutting down: %s", err)
		}
	}()

	if err := s.ListenAndServe(cfg.ListenAddr); err != nil {
		return cli.Exit(fmt.Sprintf("server error: %s", err), 1)
	}
	return nil
}
