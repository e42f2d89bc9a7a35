package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-monitor/src/config"
	"market-monitor/src/engine"
	"market-monitor/src/interfaces"
	"market-monitor/src/logger"
	"market-monitor/src/server"
)

// -----------------------------------------------------------------------------

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.LogLevel, conf.Name)
	defer appLogger.Sync()

	// 4. Setup Components
	journal, writer, err := setupJournal(conf, appLogger)
	if err != nil {
		os.Exit(1)
	}

	transport, err := setupTransport(conf)
	if err != nil {
		appLogger.Critical("Failed to init transport: %v", err)
		os.Exit(1)
	}

	eng := engine.NewEngine(conf, transport, writer, logger.NewLogger(conf.LogLevel, "Engine"))
	var srv interfaces.IDataExchanger = server.NewAPIServer(conf, eng, logger.NewLogger(conf.LogLevel, "APIServer"))
	eng.OnUpdate(srv.Broadcast)

	// 5. Start Servers
	grpcServer := startServers(srv, eng, conf, appLogger)

	// 6. Start Engine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	// 7. Shutdown
	appLogger.Info("Shutting down...")
	eng.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		appLogger.Warning("Server shutdown: %v", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	if writer != nil {
		writer.Stop()
		if n := writer.Dropped(); n > 0 {
			appLogger.Warning("Journal dropped %d records this session", n)
		}
	}
	if journal != nil {
		if err := journal.Close(); err != nil {
			appLogger.Warning("Journal close: %v", err)
		}
	}
	appLogger.Info("Shutdown complete.")
}
