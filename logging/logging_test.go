package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/latticedb/lattice/config"
)

func TestGetLoggerTagsComponent(t *testing.T) {
	log := GetLogger("engine")
	assert.NotNil(t, log)
}

func TestInitSwitchesFormat(t *testing.T) {
	cfg := config.Default()
	cfg.LogFormat = "json"
	cfg.LogLevel = "debug"
	Init(cfg)
	log := GetLogger("exec")
	assert.NotNil(t, log)

	// restore console handler so other tests in the suite aren't affected
	Init(config.Default())
}
