package zaplogger

import (
	"errors"
	"testing"

	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerCarriesFixedAndBoundFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := New(zap.New(core), observability.F("service", "cart-service"))

	log.With(observability.F("use_case", "cart.remove_product")).
		Info("use_case_done", observability.F("outcome", "error"), observability.F("error", errors.New("boom")))

	entries := logs.FilterMessage("use_case_done").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	for k, want := range map[string]any{
		"service":  "cart-service",
		"use_case": "cart.remove_product",
		"outcome":  "error",
		"error":    "boom",
	} {
		if fields[k] != want {
			t.Fatalf("field %s = %v, want %v", k, fields[k], want)
		}
	}
}

func TestLevels(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := New(zap.New(core))

	log.Debug("dropped")
	log.Info("dropped")
	log.Warn("kept")
	log.Error("kept")

	if got := logs.FilterMessage("kept").Len(); got != 2 {
		t.Fatalf("expected 2 entries at warn and above, got %d", got)
	}
	if got := logs.FilterMessage("dropped").Len(); got != 0 {
		t.Fatalf("expected debug/info to be filtered, got %d", got)
	}
}
