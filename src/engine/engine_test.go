package engine_test

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"market-monitor/src/config"
	"market-monitor/src/engine"
	"market-monitor/src/logger"
	"market-monitor/src/models"
	"market-monitor/src/testutils"
)

const waitFor = 2 * time.Second

func testConfig(initial ...string) *config.Config {
	return &config.Config{MConfig: &models.MConfig{
		Name: "test",
		Source: models.MSourceConfig{
			Transport:        "websocket",
			Endpoint:         "ws://unused",
			ReconnectDelayMs: 5, MaxReconnectDelayMs: 20,
		},
		Subscription: models.MSubscriptionConfig{InitialSymbols: initial},
		Market:       models.MMarketConfig{DefaultMIC: "xidx"},
	}}
}

func startEngine(t *testing.T, initial ...string) (*engine.Engine, *testutils.FakeTransport) {
	t.Helper()
	transport := testutils.NewFakeTransport()
	e := engine.NewEngine(testConfig(initial...), transport, nil, logger.NewNopLogger())
	e.Start(context.Background())
	t.Cleanup(e.Stop)
	return e, transport
}

func TestEngine_RequestsInitialSetOnConnect(t *testing.T) {
	e, transport := startEngine(t, "BBCA", "BBRI")
	conn := transport.Accept()

	testutils.Eventually(t, waitFor, func() bool { return conn.CountEvent(models.EventRequestSeries) == 1 }, "series request on connect")
	testutils.AssertTrue(t, conn.CountEvent(models.EventRequestQuotes) == 1, "one quotes request on connect")
	testutils.AssertTrue(t, e.IsConnected(), "engine should report connected")
}

func TestEngine_EmptySetConnectsQuietly(t *testing.T) {
	e, transport := startEngine(t)
	conn := transport.Accept()

	testutils.Eventually(t, waitFor, e.IsConnected, "engine should connect")
	testutils.Never(t, 50*time.Millisecond, func() bool { return len(conn.Envelopes()) > 0 }, "no request expected for an empty set")

	present, err := e.ToggleSymbol(context.Background(), "BBCA")
	if err != nil || !present {
		t.Fatalf("ToggleSymbol: present=%v err=%v", present, err)
	}
	if conn.CountEvent(models.EventRequestQuotes) != 1 || conn.CountEvent(models.EventRequestSeries) != 1 {
		t.Fatalf("Expected exactly one request pair, got %v", conn.Envelopes())
	}
}

func TestEngine_PushesReachDisplay(t *testing.T) {
	e, transport := startEngine(t, "BBCA", "BBRI", "TLKM")
	conn := transport.Accept()
	testutils.Eventually(t, waitFor, e.IsConnected, "engine should connect")

	conn.PushEvent(models.EventQuotePush, `[{"symbol":"BBCA","price":100,"change":5,"changePercent":5.26}]`)
	conn.PushEvent(models.EventSeriesPush, `{"symbol":"BBCA","chart":[{"timestamp":1,"price":1},{"timestamp":2,"price":2}]}`)
	conn.PushEvent(models.EventSeriesPush, `[{"symbol":"BBRI","chart":[{"timestamp":1,"price":100},{"timestamp":2,"price":110}]}]`)

	testutils.Eventually(t, waitFor, func() bool { _, ok := e.Display("BBRI"); return ok }, "BBRI should become displayable")

	v, ok := e.Display("BBCA")
	if !ok || v.Price != 100 || v.Change != 5 || v.ChangePercent == nil || *v.ChangePercent != 5.26 {
		t.Errorf("Quote should take precedence, got %+v", v)
	}
	v, _ = e.Display("BBRI")
	if v.Price != 110 || v.Change != 10 || v.ChangePercent == nil || *v.ChangePercent != 10 {
		t.Errorf("Unexpected series-derived value %+v", v)
	}

	snap := e.Snapshot()
	if len(snap.Values) != 2 {
		t.Fatalf("TLKM has no data and must be omitted, got %d values", len(snap.Values))
	}
	if snap.Values[0].Symbol != "BBCA" || snap.Values[1].Symbol != "BBRI" {
		t.Errorf("Expected subscription order, got %v", snap.Values)
	}
	if snap.Values[1].Formatted.ChangePercent != "+10.00%" {
		t.Errorf("Unexpected formatted percent %q", snap.Values[1].Formatted.ChangePercent)
	}
}

func TestEngine_MalformedPushIgnored(t *testing.T) {
	e, transport := startEngine(t, "BBCA")
	conn := transport.Accept()
	testutils.Eventually(t, waitFor, e.IsConnected, "engine should connect")

	conn.PushEvent(models.EventQuotePush, `{"symbol":"BBCA","price":100,"change":1,"changePercent":1}`)
	conn.PushEvent(models.EventQuotePush, `"oops"`)
	conn.PushEvent(models.EventQuotePush, `[]`)

	testutils.Eventually(t, waitFor, func() bool {
		for _, a := range e.Activity(10) {
			if a.Kind == "ignored" {
				return true
			}
		}
		return false
	}, "malformed push should be logged as ignored")

	v, ok := e.Display("BBCA")
	if !ok || v.Price != 100 {
		t.Errorf("Stored quote should survive malformed and empty pushes, got %+v", v)
	}
	testutils.AssertTrue(t, e.IsConnected(), "malformed push must not drop the connection")
}

func TestEngine_ReconnectUsesCurrentSetOnce(t *testing.T) {
	e, transport := startEngine(t, "BBCA")
	first := transport.Accept()
	testutils.Eventually(t, waitFor, func() bool { return first.CountEvent(models.EventRequestQuotes) == 1 }, "initial request")

	first.Drop()
	testutils.Eventually(t, waitFor, func() bool { return !e.IsConnected() }, "engine should notice the drop")

	if err := e.SetSymbols(context.Background(), []models.Symbol{"TLKM", "ANTM"}); err != nil {
		t.Fatalf("SetSymbols: %v", err)
	}
	present, _ := e.ToggleSymbol(context.Background(), "BBRI")
	testutils.AssertTrue(t, present, "BBRI should be added")

	second := transport.Accept()
	testutils.Eventually(t, waitFor, func() bool { return second.CountEvent(models.EventRequestSeries) == 1 }, "resubscribe on reconnect")
	testutils.Never(t, 50*time.Millisecond, func() bool {
		return second.CountEvent(models.EventRequestQuotes) > 1 || second.CountEvent(models.EventRequestSeries) > 1
	}, "duplicate requests after reconnect")

	var got []string
	for _, env := range second.Envelopes() {
		if env.Event == models.EventRequestQuotes {
			got = decodeSymbols(t, env)
		}
	}
	if !reflect.DeepEqual(got, []string{"TLKM", "ANTM", "BBRI"}) {
		t.Errorf("Expected set current at reconnect, got %v", got)
	}
}

func TestEngine_ChangeQueuedBehindConnectRequestsOnce(t *testing.T) {
	transport := testutils.NewFakeTransport()
	e := engine.NewEngine(testConfig("BBCA"), transport, nil, logger.NewNopLogger())

	// the first update parks the loop until released
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	e.OnUpdate(func(*models.MDisplaySnapshot) {
		once.Do(func() {
			close(entered)
			<-release
		})
	})
	e.Start(context.Background())
	t.Cleanup(e.Stop)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.SetSymbols(context.Background(), []models.Symbol{"BBCA"})
	}()
	<-entered

	go func() {
		defer wg.Done()
		e.SetSymbols(context.Background(), []models.Symbol{"BBCA", "BBRI"})
	}()
	time.Sleep(20 * time.Millisecond)

	// the transport comes up while the change is still queued
	conn := transport.Accept()
	testutils.Eventually(t, waitFor, e.IsConnected, "transport should connect")
	close(release)
	wg.Wait()

	testutils.Eventually(t, waitFor, func() bool { return conn.CountEvent(models.EventRequestSeries) == 1 }, "request on connect")
	testutils.Never(t, 50*time.Millisecond, func() bool {
		return conn.CountEvent(models.EventRequestQuotes) > 1 || conn.CountEvent(models.EventRequestSeries) > 1
	}, "duplicate request pair")

	for _, env := range conn.Envelopes() {
		if env.Event == models.EventRequestQuotes {
			if got := decodeSymbols(t, env); !reflect.DeepEqual(got, []string{"BBCA", "BBRI"}) {
				t.Errorf("Expected the queued set, got %v", got)
			}
		}
	}
}

func TestEngine_RemovedSymbolKeepsState(t *testing.T) {
	e, transport := startEngine(t, "BBCA")
	conn := transport.Accept()
	testutils.Eventually(t, waitFor, e.IsConnected, "engine should connect")

	conn.PushEvent(models.EventQuotePush, `{"symbol":"BBCA","price":9000,"change":0,"changePercent":0}`)
	testutils.Eventually(t, waitFor, func() bool { _, ok := e.Display("BBCA"); return ok }, "quote stored")

	e.ToggleSymbol(context.Background(), "BBCA")

	if _, ok := e.Display("BBCA"); !ok {
		t.Error("State must be retained after unsubscribing")
	}
	if len(e.Snapshot().Values) != 0 {
		t.Error("Unsubscribed symbols should not appear in the snapshot")
	}
}

func TestEngine_UpdateHook(t *testing.T) {
	transport := testutils.NewFakeTransport()
	e := engine.NewEngine(testConfig("BBCA"), transport, nil, logger.NewNopLogger())

	var (
		snaps []*models.MDisplaySnapshot
		mu    sync.Mutex
	)
	e.OnUpdate(func(s *models.MDisplaySnapshot) {
		mu.Lock()
		snaps = append(snaps, s)
		mu.Unlock()
	})
	e.Start(context.Background())
	defer e.Stop()

	conn := transport.Accept()
	conn.PushEvent(models.EventQuotePush, `{"symbol":"BBCA","price":1,"change":0,"changePercent":0}`)

	testutils.Eventually(t, waitFor, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(snaps) >= 2 && len(snaps[len(snaps)-1].Values) == 1
	}, "hook should see connect and quote updates")

	mu.Lock()
	first := snaps[0]
	mu.Unlock()
	testutils.AssertTrue(t, first.Connected, "first update comes from the connect")
}

func TestEngine_StopWithoutStart(t *testing.T) {
	e := engine.NewEngine(testConfig(), testutils.NewFakeTransport(), nil, logger.NewNopLogger())
	e.Stop()
}
