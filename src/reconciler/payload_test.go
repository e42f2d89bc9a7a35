package reconciler

import (
	"errors"
	"testing"

	"market-monitor/src/helpers"
	"market-monitor/src/models"
)

func TestDecodePayload_Single(t *testing.T) {
	p, err := DecodePayload[models.MQuotePoint]([]byte(`  {"symbol":"BBCA","price":9000,"change":25,"changePercent":0.28}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(Single[models.MQuotePoint]); !ok {
		t.Fatalf("expected Single, got %T", p)
	}
	items := p.Items()
	if len(items) != 1 || items[0].Symbol != "BBCA" || items[0].Price != 9000 {
		t.Errorf("unexpected items %+v", items)
	}
}

func TestDecodePayload_Batch(t *testing.T) {
	raw := `[{"symbol":"BBRI","chart":[{"timestamp":1,"price":4200},{"timestamp":2,"price":4210,"volume":1500}]},
	         {"symbol":"TLKM","chart":[]}]`
	p, err := DecodePayload[models.MSeriesUpdate]([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(Batch[models.MSeriesUpdate]); !ok {
		t.Fatalf("expected Batch, got %T", p)
	}
	items := p.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Chart[1].Volume == nil || *items[0].Chart[1].Volume != 1500 {
		t.Error("optional volume not decoded")
	}
	if items[0].Chart[0].Open != nil {
		t.Error("absent open must stay nil")
	}
}

func TestDecodePayload_EmptyBatch(t *testing.T) {
	p, err := DecodePayload[models.MQuotePoint]([]byte(`[]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Items()) != 0 {
		t.Errorf("expected no items")
	}
}

func TestDecodePayload_Malformed(t *testing.T) {
	cases := []string{``, `   `, `null`, `42`, `"BBCA"`, `{"symbol":`, `[1,2`}
	for _, raw := range cases {
		_, err := DecodePayload[models.MQuotePoint]([]byte(raw))
		if err == nil {
			t.Errorf("%q: expected error", raw)
			continue
		}
		if !helpers.IsPayloadError(err) {
			t.Errorf("%q: expected PayloadError, got %v", raw, err)
		}
	}

	_, err := DecodePayload[models.MQuotePoint]([]byte(`true`))
	if !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("expected ErrMalformedPayload, got %v", err)
	}
}
