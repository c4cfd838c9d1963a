package main

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"finchat/internal/common/config"
)

func TestConversationLock_SameIDSameMutex(t *testing.T) {
	s := &chatServer{}

	assert.Same(t, s.conversationLock("conv-1"), s.conversationLock("conv-1"))
}

func TestConversationLock_TableIsBounded(t *testing.T) {
	s := &chatServer{}

	seen := make(map[*sync.Mutex]bool)
	for i := 0; i < 10*lockStripes; i++ {
		seen[s.conversationLock(fmt.Sprintf("conv-%d", i))] = true
	}

	assert.LessOrEqual(t, len(seen), lockStripes)
}

func TestBuildLogger_HonorsConfiguredLevel(t *testing.T) {
	cfg := &config.Config{}
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"
	assert.True(t, buildLogger(cfg).Core().Enabled(zapcore.DebugLevel))

	cfg.Logging.Level = "error"
	assert.False(t, buildLogger(cfg).Core().Enabled(zapcore.InfoLevel))
}
