package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestGormLoggerTrace(t *testing.T) {
	log, logs := observed()
	gl := NewGormLogger(log)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(context.Background(), time.Now(), sql, nil)
	assert.Equal(t, 0, logs.Len(), "fast successful query is silent at warn level")

	gl.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	gl.Trace(context.Background(), time.Now().Add(-2*time.Second), sql, nil)
	gl.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, "gorm", entries[0].ContextMap()["component"])
	}
}

func TestGormLoggerLogMode(t *testing.T) {
	log, logs := observed()
	gl := NewGormLogger(log).LogMode(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("boom"))
	gl.Error(context.Background(), "ignored %d", 1)
	assert.Equal(t, 0, logs.Len())

	gl = NewGormLogger(log).LogMode(gormlogger.Info)
	gl.Info(context.Background(), "migrated %s", "powders")
	assert.Equal(t, 1, logs.FilterMessage("migrated powders").Len())
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud")
	assert.Error(t, err)

	log, err := New("")
	assert.NoError(t, err)
	assert.NotNil(t, log)
}
