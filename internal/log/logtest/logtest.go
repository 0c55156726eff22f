// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package logtest provides helpers for asserting on what
// the process logger records during a test.
package logtest

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gviegas/hybrid/internal/log"
)

// Observe installs a process logger that records every
// entry at or above debug level.
// The previous logger is restored when t completes.
func Observe(t testing.TB) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := log.L()
	log.Set(zap.New(core))
	t.Cleanup(func() { log.Set(prev) })
	return logs
}

// Invalid returns the entries logged for invalid
// arguments by the given method.
func Invalid(logs *observer.ObservedLogs, method string) []observer.LoggedEntry {
	return logs.FilterMessage("invalid argument").FilterField(zap.String("method", method)).All()
}
