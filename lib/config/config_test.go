package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaultsFlowThroughViper(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	setDefaults()

	cfg := NewRouterConfigFromViper()
	assert.Equal(t, 2, cfg.NetID)
	assert.False(t, cfg.NTPEnabled)
	assert.Len(t, cfg.NTPServers, 3)
	assert.Equal(t, 1024, cfg.TunnelDataQueueDepth)
	assert.Equal(t, 256, cfg.NetDbQueueDepth)
}

func TestOverridesWin(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	setDefaults()
	viper.Set("netid", 7)
	viper.Set("queues.tunnel_data", 16)

	cfg := NewRouterConfigFromViper()
	assert.Equal(t, 7, cfg.NetID)
	assert.Equal(t, 16, cfg.TunnelDataQueueDepth)
}

func TestBuildI2NPDirPath(t *testing.T) {
	path := BuildI2NPDirPath()
	assert.Contains(t, path, GOI2NP_BASE_DIR)
}
