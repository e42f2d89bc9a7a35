package engine_test

import (
	"encoding/json"
	"testing"

	"market-monitor/src/models"
)

func decodeSymbols(t *testing.T, env models.MEnvelope) []string {
	t.Helper()
	var symbols []string
	if err := json.Unmarshal(env.Data, &symbols); err != nil {
		t.Fatalf("bad request payload %s: %v", env.Data, err)
	}
	return symbols
}
