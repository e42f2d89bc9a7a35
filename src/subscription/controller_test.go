package subscription_test

import (
	"reflect"
	"sort"
	"testing"

	"market-monitor/src/logger"
	"market-monitor/src/models"
	"market-monitor/src/subscription"
	"market-monitor/src/testutils"
)

func setup(connected bool, initial ...models.Symbol) (*subscription.Controller, *testutils.FakeEmitter) {
	emitter := testutils.NewFakeEmitter(connected)
	c := subscription.NewController(emitter, initial, logger.NewNopLogger())
	if connected {
		c.HandleConnected()
		emitter.Reset()
	}
	return c, emitter
}

func sorted(symbols []models.Symbol) []string {
	out := models.SymbolsToStrings(symbols)
	sort.Strings(out)
	return out
}

func TestController_EmptySetConnectEmitsNothing(t *testing.T) {
	c, emitter := setup(true)

	c.HandleConnected()

	if len(emitter.Events) != 0 {
		t.Fatalf("Expected no requests on connect with empty set, got %v", emitter.Events)
	}
}

func TestController_ToggleInWhileConnected(t *testing.T) {
	c, emitter := setup(true)
	c.HandleConnected()

	present := c.ToggleSymbol("BBCA")

	testutils.AssertTrue(t, present, "BBCA should be present after toggle")
	if emitter.Count(models.EventRequestQuotes) != 1 || emitter.Count(models.EventRequestSeries) != 1 {
		t.Fatalf("Expected exactly one request of each kind, got %v", emitter.Events)
	}
	last, _ := emitter.Last(models.EventRequestQuotes)
	if !reflect.DeepEqual(last.Symbols, []string{"BBCA"}) {
		t.Errorf("Expected one-element request, got %v", last.Symbols)
	}
	last, _ = emitter.Last(models.EventRequestSeries)
	if !reflect.DeepEqual(last.Symbols, []string{"BBCA"}) {
		t.Errorf("Expected one-element series request, got %v", last.Symbols)
	}
}

func TestController_ToggleTwiceRestoresSet(t *testing.T) {
	c, _ := setup(true, "BBCA", "BBRI")
	before := sorted(c.Symbols())

	c.ToggleSymbol("TLKM")
	present := c.ToggleSymbol("TLKM")

	testutils.AssertTrue(t, !present, "TLKM should be absent after second toggle")
	if !reflect.DeepEqual(before, sorted(c.Symbols())) {
		t.Errorf("Expected %v, got %v", before, sorted(c.Symbols()))
	}

	// remove then add back
	c.ToggleSymbol("BBCA")
	c.ToggleSymbol("BBCA")
	if !reflect.DeepEqual(before, sorted(c.Symbols())) {
		t.Errorf("Expected set equality after remove/add, got %v", c.Symbols())
	}
}

func TestController_NoDuplicates(t *testing.T) {
	c, _ := setup(false, "BBCA", "BBCA", "BBRI")

	if len(c.Symbols()) != 2 {
		t.Fatalf("Expected duplicates removed, got %v", c.Symbols())
	}

	c.SetSymbols([]models.Symbol{"ANTM", "ANTM", "", "TLKM"})
	if !reflect.DeepEqual(models.SymbolsToStrings(c.Symbols()), []string{"ANTM", "TLKM"}) {
		t.Errorf("Unexpected set: %v", c.Symbols())
	}
}

func TestController_RequestsCarryWholeSet(t *testing.T) {
	c, emitter := setup(true, "BBCA", "BBRI")

	c.ToggleSymbol("ANTM")

	last, ok := emitter.Last(models.EventRequestQuotes)
	if !ok {
		t.Fatal("Expected a quotes request")
	}
	if !reflect.DeepEqual(last.Symbols, []string{"BBCA", "BBRI", "ANTM"}) {
		t.Errorf("Expected whole set, got %v", last.Symbols)
	}
}

func TestController_SetWhileDisconnectedIsDeferred(t *testing.T) {
	c, emitter := setup(false, "BBCA")

	c.SetSymbols([]models.Symbol{"TLKM", "ANTM"})
	c.ToggleSymbol("BBRI")

	if len(emitter.Events) != 0 {
		t.Fatalf("Expected nothing sent while disconnected, got %v", emitter.Events)
	}

	emitter.SetConnected(true)
	c.HandleConnected()

	if emitter.Count(models.EventRequestQuotes) != 1 || emitter.Count(models.EventRequestSeries) != 1 {
		t.Fatalf("Expected exactly one request pair on reconnect, got %v", emitter.Events)
	}
	last, _ := emitter.Last(models.EventRequestSeries)
	if !reflect.DeepEqual(last.Symbols, []string{"TLKM", "ANTM", "BBRI"}) {
		t.Errorf("Expected set current at reconnect time, got %v", last.Symbols)
	}
}

func TestController_ChangeBeforeConnectedSignalIsDeferred(t *testing.T) {
	c, emitter := setup(false, "BBCA")

	// transport is already up but the connected signal has not been handled yet
	emitter.SetConnected(true)
	c.SetSymbols([]models.Symbol{"BBCA", "BBRI"})

	if len(emitter.Events) != 0 {
		t.Fatalf("Expected nothing sent before HandleConnected, got %v", emitter.Events)
	}

	c.HandleConnected()

	if emitter.Count(models.EventRequestQuotes) != 1 || emitter.Count(models.EventRequestSeries) != 1 {
		t.Fatalf("Expected exactly one request pair, got %v", emitter.Events)
	}
}

func TestController_DisconnectSuspendsRequests(t *testing.T) {
	c, emitter := setup(true, "BBCA")

	c.HandleDisconnected()
	c.ToggleSymbol("BBRI")

	if len(emitter.Events) != 0 {
		t.Fatalf("Expected nothing sent after HandleDisconnected, got %v", emitter.Events)
	}
}

func TestController_SameSetStillRequests(t *testing.T) {
	c, emitter := setup(true, "BBCA")

	c.SetSymbols([]models.Symbol{"BBCA"})
	c.SetSymbols([]models.Symbol{"BBCA"})

	if emitter.Count(models.EventRequestQuotes) != 2 {
		t.Errorf("Expected a request per change, got %d", emitter.Count(models.EventRequestQuotes))
	}
}

func TestController_ClearingSetWhileConnectedRequestsEmpty(t *testing.T) {
	c, emitter := setup(true, "BBCA")

	c.SetSymbols(nil)

	last, ok := emitter.Last(models.EventRequestQuotes)
	if !ok {
		t.Fatal("Expected an empty request so the source drops the subscription")
	}
	if len(last.Symbols) != 0 {
		t.Errorf("Expected empty request, got %v", last.Symbols)
	}
}

func TestController_Contains(t *testing.T) {
	c, _ := setup(false, "BBCA")

	testutils.AssertTrue(t, c.Contains("BBCA"), "BBCA should be present")
	testutils.AssertTrue(t, !c.Contains("BBRI"), "BBRI should be absent")
}

func TestController_SymbolsReturnsCopy(t *testing.T) {
	c, _ := setup(false, "BBCA", "BBRI")

	got := c.Symbols()
	got[0] = "XXXX"

	testutils.AssertTrue(t, c.Contains("BBCA"), "caller mutation must not leak into the set")
}
