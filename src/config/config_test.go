package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetDataDir(t *testing.T) {
	conf := NewDefaultConfig()
	conf.SetDataDir("/tmp/radix")

	assert.Equal(t, filepath.Join("/tmp/radix", DefaultBadgerFile), conf.DatabaseDir)
	assert.Equal(t, filepath.Join("/tmp/radix", DefaultSeedsFile), conf.SeedsFile())

	conf.DatabaseDir = "/var/db"
	conf.SetDataDir("/tmp/other")
	assert.Equal(t, "/var/db", conf.DatabaseDir)
}

func TestWebSocketConfig(t *testing.T) {
	conf := NewDefaultConfig()
	conf.QuarantineWindow = time.Second
	conf.RequestTimeout = 0

	ws := conf.WebSocketConfig()
	assert.Equal(t, time.Second, ws.QuarantineWindow)
	assert.Equal(t, DefaultDialTimeout, ws.DialTimeout)
	assert.NotZero(t, ws.WriteTimeout)
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, LogLevel("warn"))
	assert.Equal(t, logrus.DebugLevel, LogLevel("chatty"))
}
