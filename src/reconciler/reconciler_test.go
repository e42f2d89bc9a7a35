package reconciler

import (
	"reflect"
	"testing"

	"market-monitor/src/logger"
	"market-monitor/src/models"
)

func newReconciler() *Reconciler {
	return NewReconciler(logger.NewNopLogger())
}

func quote(sym string, price, change, pct float64) models.MQuotePoint {
	return models.MQuotePoint{Symbol: models.Symbol(sym), Price: price, Change: change, ChangePercent: pct}
}

func TestApplyQuotes_LastWriteWinsPerSymbol(t *testing.T) {
	r := newReconciler()
	r.ApplyQuotes(Batch[models.MQuotePoint]{quote("BBCA", 9000, 25, 0.28), quote("BBRI", 4200, -10, -0.24)})
	r.ApplyQuotes(Single[models.MQuotePoint]{Item: quote("BBCA", 9050, 75, 0.84)})

	got, ok := r.Quote("BBCA")
	if !ok || got.Price != 9050 {
		t.Errorf("BBCA not overwritten: %+v", got)
	}

	// BBRI absent from the second push keeps its quote
	got, ok = r.Quote("BBRI")
	if !ok || !reflect.DeepEqual(got, quote("BBRI", 4200, -10, -0.24)) {
		t.Errorf("BBRI changed: %+v", got)
	}
}

func TestApplySeries_WholesaleReplace(t *testing.T) {
	r := newReconciler()
	r.ApplySeries(Batch[models.MSeriesUpdate]{
		{Symbol: "BBRI", Chart: models.MTimeSeries{{Timestamp: 1, Price: 1}, {Timestamp: 2, Price: 2}, {Timestamp: 3, Price: 3}}},
		{Symbol: "TLKM", Chart: models.MTimeSeries{{Timestamp: 1, Price: 3000}}},
	})
	r.ApplySeries(Single[models.MSeriesUpdate]{Item: models.MSeriesUpdate{
		Symbol: "BBRI", Chart: models.MTimeSeries{{Timestamp: 10, Price: 10}},
	}})

	s, _ := r.Series("BBRI")
	if len(s) != 1 || s[0].Timestamp != 10 {
		t.Errorf("series not replaced wholesale: %+v", s)
	}
	s, _ = r.Series("TLKM")
	if len(s) != 1 || s[0].Price != 3000 {
		t.Errorf("untouched symbol changed: %+v", s)
	}
}

func TestEmptyPushIsNoOp(t *testing.T) {
	r := newReconciler()
	r.ApplyQuotes(Batch[models.MQuotePoint]{quote("BBCA", 1, 2, 3)})
	r.ApplySeries(Single[models.MSeriesUpdate]{Item: models.MSeriesUpdate{Symbol: "BBCA", Chart: models.MTimeSeries{{Timestamp: 1, Price: 5}}}})

	before, _ := r.State("BBCA")

	if _, err := r.HandleQuotePush([]byte(`[]`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.HandleSeriesPush([]byte(`[]`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, _ := r.State("BBCA")
	if !reflect.DeepEqual(before, after) {
		t.Errorf("empty push changed state: %+v -> %+v", before, after)
	}
	if len(r.Symbols()) != 1 {
		t.Errorf("empty push created symbols: %v", r.Symbols())
	}
}

func TestMalformedPushIgnored(t *testing.T) {
	r := newReconciler()
	r.ApplyQuotes(Single[models.MQuotePoint]{Item: quote("ANTM", 1500, 0, 0)})

	if _, err := r.HandleQuotePush([]byte(`"oops"`)); err == nil {
		t.Error("expected decode error")
	}
	if _, err := r.HandleSeriesPush([]byte(`{"symbol":"ANTM","chart":"nope"}`)); err == nil {
		t.Error("expected decode error")
	}

	q, ok := r.Quote("ANTM")
	if !ok || q.Price != 1500 {
		t.Errorf("state changed by malformed push: %+v", q)
	}
	if _, ok := r.Series("ANTM"); ok {
		t.Error("malformed series push must not create a series")
	}
}

func TestSeriesIsolatedFromCaller(t *testing.T) {
	r := newReconciler()
	chart := models.MTimeSeries{{Timestamp: 1, Price: 100}}
	r.ApplySeries(Single[models.MSeriesUpdate]{Item: models.MSeriesUpdate{Symbol: "BBCA", Chart: chart}})

	chart[0].Price = -1
	got, _ := r.Series("BBCA")
	if got[0].Price != 100 {
		t.Error("stored series aliased to push buffer")
	}

	got[0].Price = -2
	again, _ := r.Series("BBCA")
	if again[0].Price != 100 {
		t.Error("read accessor leaked internal storage")
	}
}

func TestState(t *testing.T) {
	r := newReconciler()
	if _, ok := r.State("NONE"); ok {
		t.Error("unknown symbol must report absent")
	}

	r.ApplySeries(Single[models.MSeriesUpdate]{Item: models.MSeriesUpdate{Symbol: "BBRI"}})
	st, ok := r.State("BBRI")
	if !ok || st.Quote != nil || st.Series == nil || len(st.Series) != 0 {
		t.Errorf("unexpected state for empty series push: %+v (ok=%v)", st, ok)
	}
}

func TestSkipsItemsWithoutSymbol(t *testing.T) {
	r := newReconciler()
	applied := r.ApplyQuotes(Batch[models.MQuotePoint]{{Price: 1}, quote("BBCA", 2, 0, 0)})
	if len(applied) != 1 || len(r.Symbols()) != 1 {
		t.Errorf("expected only BBCA to be applied, got %v", applied)
	}
}
