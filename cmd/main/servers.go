package main

import (
	"fmt"
	"net"

	"market-monitor/src/config"
	"market-monitor/src/grpc_control"
	"market-monitor/src/interfaces"
	"market-monitor/src/logger"

	"google.golang.org/grpc"
)

// -----------------------------------------------------------------------------

// startServers starts the HTTP API and, when a port is configured, the gRPC
// control server. Returns the gRPC server so it can be stopped.
func startServers(srv interfaces.IDataExchanger, monitor interfaces.IMonitor, conf *config.Config, appLogger *logger.Logger) *grpc.Server {

	// 1. HTTP API + viewer websocket
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 2. gRPC Control Server
	if conf.GrpcPort == 0 {
		appLogger.Info("gRPC control server disabled")
		return nil
	}

	addr := fmt.Sprintf("%s:%d", conf.GrpcHost, conf.GrpcPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		appLogger.Critical("failed to listen for gRPC: %v", err)
		return nil
	}

	grpcServer := grpc.NewServer()
	controlService := grpc_control.NewControlService(conf, monitor, logger.NewLogger(conf.LogLevel, "ControlService"))
	grpc_control.RegisterControlServer(grpcServer, controlService)

	go func() {
		appLogger.Info("Starting gRPC Control Server on %s", addr)
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Error("gRPC server stopped: %v", err)
		}
	}()
	return grpcServer
}
