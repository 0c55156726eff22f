// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	l, err := New(Config{Level: "debug", Encoding: "json"})
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	_, err = New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestSet(t *testing.T) {
	prev := L()
	defer Set(prev)

	core, logs := observer.New(zap.InfoLevel)
	Set(zap.New(core))
	Named("actor").Error("boom", String("method", "Render"))

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, "boom", e.Message)
	assert.Equal(t, "actor", e.ContextMap()["component"])
	assert.Equal(t, "Render", e.ContextMap()["method"])

	Set(nil)
	assert.NotNil(t, L())
}
