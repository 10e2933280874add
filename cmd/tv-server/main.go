package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"hashvault/pkg/app"
	"hashvault/pkg/config"
	"hashvault/pkg/server"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	cfgFile := flag.String("config", "", "config file (default is $HOME/.tv/config.yaml)")
	addr := flag.String("addr", "", "listen address (overrides server.addr)")
	flag.Parse()

	if err := config.Load(*cfgFile); err != nil {
		log.Fatal().Err(err).Msg("config error")
	}
	if *addr != "" {
		viper.Set("server.addr", *addr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize app")
	}
	defer application.Close()

	listenAddr := viper.GetString("server.addr")
	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", listenAddr).Msg("failed to listen")
	}

	grpcServer := server.New(application)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", listenAddr).Str("repo", application.RepoPath).Msg("grpc server listening")
		errCh <- grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
		grpcServer.GracefulStop()
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("failed to serve")
			application.Close()
			os.Exit(1)
		}
	}
	log.Info().Msg("server stopped")
}
