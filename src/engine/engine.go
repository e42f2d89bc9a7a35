package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"market-monitor/src/config"
	"market-monitor/src/connection"
	"market-monitor/src/display"
	"market-monitor/src/interfaces"
	"market-monitor/src/logger"
	"market-monitor/src/models"
	"market-monitor/src/reconciler"
	"market-monitor/src/storage"
	"market-monitor/src/subscription"
	"market-monitor/src/utils"
)

const (
	loopQueueSize    = 512
	activityCapacity = 200
)

// -----------------------------------------------------------------------------

// Engine wires the connection manager, subscription controller and stream
// reconciler onto one event loop. It implements interfaces.IMonitor.
type Engine struct {
	Config     *config.Config
	Logger     *logger.Logger
	loop       *Loop
	manager    *connection.Manager
	controller *subscription.Controller
	reconciler *reconciler.Reconciler
	scheduler  *utils.MarketScheduler
	journal    *storage.JournalWriter
	activity   *utils.RingBuffer[models.MActivity]

	hooks  []func(*models.MDisplaySnapshot)
	hookMu sync.RWMutex

	handle *connection.ConnectionHandle
	cancel context.CancelFunc
	now    func() time.Time
}

var _ interfaces.IMonitor = (*Engine)(nil)

// -----------------------------------------------------------------------------

// NewEngine builds the core. journal may be nil when storage is disabled.
func NewEngine(cfg *config.Config, transport interfaces.ITransport, journal *storage.JournalWriter, log *logger.Logger) *Engine {
	e := &Engine{
		Config:   cfg,
		Logger:   log,
		journal:  journal,
		activity: utils.NewRingBuffer[models.MActivity](activityCapacity),
		now:      time.Now,
	}

	e.loop = NewLoop(loopQueueSize, log.Named("Loop"))
	e.manager = connection.NewManager(transport, cfg, log.Named("Connection"), e.loop.Dispatch)
	e.controller = subscription.NewController(e.manager, cfg.InitialSymbols(), log.Named("Subscription"))
	e.reconciler = reconciler.NewReconciler(log.Named("Reconciler"))
	e.scheduler = utils.NewMarketScheduler(e.controller.Symbols(), cfg.Market.DefaultMIC, log.Named("MarketScheduler"))

	e.manager.OnConnected(e.handleConnected)
	e.manager.OnDisconnected(e.handleDisconnected)
	e.manager.On(models.EventQuotePush, e.handleQuotePush)
	e.manager.On(models.EventSeriesPush, e.handleSeriesPush)

	return e
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Start runs the event loop and begins connecting.
func (e *Engine) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	go e.loop.Run(runCtx)
	e.handle = e.manager.Connect(runCtx)
	e.Logger.Info("Engine started with symbols %v", e.controller.Symbols())
}

// -----------------------------------------------------------------------------

// Stop closes the connection, lets the loop process the final disconnect and
// then stops it.
func (e *Engine) Stop() {
	if e.cancel == nil {
		return
	}
	e.handle.Close()

	// drain callbacks queued by the close
	_ = e.loop.Call(context.Background(), func() {})
	e.cancel()
	<-e.loop.Done()
	e.Logger.Info("Engine stopped")
}

// -----------------------------------------------------------------------------

// OnUpdate registers fn to receive a fresh snapshot after every state change.
// fn runs on the event loop and must not block.
func (e *Engine) OnUpdate(fn func(*models.MDisplaySnapshot)) {
	e.hookMu.Lock()
	defer e.hookMu.Unlock()
	e.hooks = append(e.hooks, fn)
}

// -----------------------------------------------------------------------------
// Event handlers (run on the loop)
// -----------------------------------------------------------------------------

func (e *Engine) handleConnected() {
	e.controller.HandleConnected()
	e.record("connected", fmt.Sprintf("symbols=%v", e.controller.Symbols()))
	e.journalRecord(storage.LifecycleRecord(storage.KindConnected, e.now()))
	e.notify()
}

// -----------------------------------------------------------------------------

func (e *Engine) handleDisconnected() {
	e.controller.HandleDisconnected()
	e.record("disconnected", "")
	e.journalRecord(storage.LifecycleRecord(storage.KindDisconnected, e.now()))
	e.notify()
}

// -----------------------------------------------------------------------------

func (e *Engine) handleQuotePush(raw json.RawMessage) {
	points, err := e.reconciler.HandleQuotePush(raw)
	if err != nil {
		e.record("ignored", err.Error())
		return
	}
	if len(points) == 0 {
		return
	}
	e.record("quote", fmt.Sprintf("%d symbols", len(points)))
	e.journalRecord(storage.QuoteRecords(points, e.now())...)
	e.notify()
}

// -----------------------------------------------------------------------------

func (e *Engine) handleSeriesPush(raw json.RawMessage) {
	updates, err := e.reconciler.HandleSeriesPush(raw)
	if err != nil {
		e.record("ignored", err.Error())
		return
	}
	if len(updates) == 0 {
		return
	}
	e.record("series", fmt.Sprintf("%d symbols", len(updates)))
	e.journalRecord(storage.SeriesRecords(updates, e.now())...)
	e.notify()
}

// -----------------------------------------------------------------------------
// Commands (posted onto the loop)
// -----------------------------------------------------------------------------

// SetSymbols replaces the subscription set.
func (e *Engine) SetSymbols(ctx context.Context, symbols []models.Symbol) error {
	return e.loop.Call(ctx, func() {
		e.controller.SetSymbols(symbols)
		e.subscriptionChanged()
	})
}

// -----------------------------------------------------------------------------

// ToggleSymbol adds or removes one symbol and reports whether it is present.
func (e *Engine) ToggleSymbol(ctx context.Context, symbol models.Symbol) (bool, error) {
	var present bool
	err := e.loop.Call(ctx, func() {
		present = e.controller.ToggleSymbol(symbol)
		e.subscriptionChanged()
	})
	return present, err
}

// -----------------------------------------------------------------------------

func (e *Engine) subscriptionChanged() {
	symbols := e.controller.Symbols()
	e.scheduler.UpdateSymbols(symbols)
	e.record("subscription", fmt.Sprintf("%v", symbols))
	e.notify()
}

// -----------------------------------------------------------------------------
// Read accessors (safe from any goroutine)
// -----------------------------------------------------------------------------

// Symbols returns the current subscription set.
func (e *Engine) Symbols() []models.Symbol {
	return e.controller.Symbols()
}

// IsConnected reports the connection state.
func (e *Engine) IsConnected() bool {
	return e.manager.IsConnected()
}

// Display computes the display value for one symbol.
func (e *Engine) Display(symbol models.Symbol) (models.MDisplayValue, bool) {
	state, ok := e.reconciler.State(symbol)
	if !ok {
		return models.MDisplayValue{}, false
	}
	return display.Compute(state)
}

// Series returns the series held for a symbol.
func (e *Engine) Series(symbol models.Symbol) (models.MTimeSeries, bool) {
	return e.reconciler.Series(symbol)
}

// MarketOpen reports whether the symbol's exchange is currently open.
func (e *Engine) MarketOpen(symbol models.Symbol) bool {
	return e.scheduler.IsOpen(symbol)
}

// Activity returns up to n recent lifecycle and push events, oldest first.
func (e *Engine) Activity(n int) []models.MActivity {
	return e.activity.GetLatest(n)
}

// -----------------------------------------------------------------------------

// Snapshot returns display entries for the subscribed symbols in subscription
// order. Symbols with nothing to display are omitted.
func (e *Engine) Snapshot() *models.MDisplaySnapshot {
	symbols := e.controller.Symbols()
	values := make([]models.MDisplayEntry, 0, len(symbols))

	for _, symbol := range symbols {
		value, ok := e.Display(symbol)
		if !ok {
			continue
		}
		values = append(values, models.MDisplayEntry{
			MDisplayValue: value,
			Formatted:     display.Format(value),
			MarketOpen:    e.scheduler.IsOpen(symbol),
		})
	}

	return &models.MDisplaySnapshot{
		Type:      "UPDATE",
		Connected: e.manager.IsConnected(),
		Symbols:   symbols,
		Values:    values,
		Timestamp: e.now().Unix(),
	}
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

func (e *Engine) notify() {
	e.hookMu.RLock()
	hooks := append([]func(*models.MDisplaySnapshot){}, e.hooks...)
	e.hookMu.RUnlock()

	if len(hooks) == 0 {
		return
	}
	snapshot := e.Snapshot()
	for _, h := range hooks {
		h(snapshot)
	}
}

// -----------------------------------------------------------------------------

func (e *Engine) record(kind, detail string) {
	e.activity.Append(models.MActivity{Kind: kind, Detail: detail, At: e.now().UnixMilli()})
}

// -----------------------------------------------------------------------------

func (e *Engine) journalRecord(records ...models.MJournalRecord) {
	if e.journal == nil {
		return
	}
	e.journal.Record(records...)
}
