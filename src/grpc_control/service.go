package grpc_control

import (
	"context"
	"errors"

	"market-monitor/src/config"
	"market-monitor/src/interfaces"
	"market-monitor/src/logger"
	"market-monitor/src/models"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ControlService implements ControlServer on top of the monitor.
type ControlService struct {
	Config  *config.Config
	Monitor interfaces.IMonitor
	Logger  *logger.Logger
}

// NewControlService creates a new instance of ControlService
func NewControlService(cfg *config.Config, monitor interfaces.IMonitor, log *logger.Logger) *ControlService {
	return &ControlService{
		Config:  cfg,
		Monitor: monitor,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) SetSymbols(ctx context.Context, req *structpb.ListValue) (*structpb.Struct, error) {
	symbols := make([]models.Symbol, 0, len(req.GetValues()))
	for _, v := range req.GetValues() {
		raw, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, status.Error(codes.InvalidArgument, "symbols must be strings")
		}
		symbol := models.NormalizeSymbol(raw.StringValue)
		if symbol == "" || !s.Config.IsAvailable(symbol) {
			return nil, status.Errorf(codes.InvalidArgument, "unknown symbol %q", raw.StringValue)
		}
		symbols = append(symbols, symbol)
	}

	if err := s.Monitor.SetSymbols(ctx, symbols); err != nil {
		return nil, toStatus(err)
	}
	s.Logger.Info("SetSymbols via gRPC: %v", symbols)

	return structpb.NewStruct(map[string]interface{}{
		"symbols": symbolList(s.Monitor.Symbols()),
	})
}

// -----------------------------------------------------------------------------

func (s *ControlService) ToggleSymbol(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	symbol := models.NormalizeSymbol(req.GetValue())
	if symbol == "" {
		return nil, status.Error(codes.InvalidArgument, "symbol is required")
	}
	if !s.Config.IsAvailable(symbol) {
		return nil, status.Errorf(codes.InvalidArgument, "unknown symbol %q", symbol)
	}

	present, err := s.Monitor.ToggleSymbol(ctx, symbol)
	if err != nil {
		return nil, toStatus(err)
	}
	s.Logger.Info("ToggleSymbol via gRPC: %s present=%v", symbol, present)

	return structpb.NewStruct(map[string]interface{}{
		"symbol":  string(symbol),
		"present": present,
		"symbols": symbolList(s.Monitor.Symbols()),
	})
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	snapshot := s.Monitor.Snapshot()

	values := make(map[string]interface{}, len(snapshot.Values))
	for _, v := range snapshot.Values {
		entry := map[string]interface{}{
			"price":       v.Price,
			"change":      v.Change,
			"from_quote":  v.FromQuote,
			"market_open": v.MarketOpen,
		}
		// a missing percent is left out, never sent as 0
		if v.ChangePercent != nil {
			entry["change_percent"] = *v.ChangePercent
		}
		values[string(v.Symbol)] = entry
	}

	return structpb.NewStruct(map[string]interface{}{
		"name":      s.Config.Name,
		"connected": snapshot.Connected,
		"symbols":   symbolList(snapshot.Symbols),
		"values":    values,
		"timestamp": snapshot.Timestamp,
	})
}

// -----------------------------------------------------------------------------

func symbolList(symbols []models.Symbol) []interface{} {
	out := make([]interface{}, len(symbols))
	for i, s := range symbols {
		out[i] = string(s)
	}
	return out
}

// -----------------------------------------------------------------------------

func toStatus(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Unavailable, err.Error())
	}
}
