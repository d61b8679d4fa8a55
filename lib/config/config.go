// Package config loads the subsystem configuration with viper from
// $HOME/.go-i2np/config.yaml, creating a default file on first run.
package config

import (
	"os"
	"path/filepath"

	"github.com/go-i2p/logger"
	"github.com/spf13/viper"
)

var (
	// CfgFile overrides the config file location, set from the CLI.
	CfgFile string
	log     = logger.GetGoI2PLogger()
)

const GOI2NP_BASE_DIR = ".go-i2np"

// InitConfig wires viper: config file location, defaults, and creation of
// the file when missing.
func InitConfig() {
	if CfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(CfgFile)
	} else {
		viper.AddConfigPath(BuildI2NPDirPath())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	handleConfigFile()
}

func setDefaults() {
	viper.SetDefault("netid", DefaultRouterConfig().NetID)
	viper.SetDefault("ntp.enabled", DefaultRouterConfig().NTPEnabled)
	viper.SetDefault("ntp.servers", DefaultRouterConfig().NTPServers)
	viper.SetDefault("queues.tunnel_data", DefaultRouterConfig().TunnelDataQueueDepth)
	viper.SetDefault("queues.netdb", DefaultRouterConfig().NetDbQueueDepth)
}

func handleConfigFile() {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && CfgFile == "" {
			createDefaultConfigFile()
		} else {
			log.Warnf("error reading config file: %s", err)
		}
	}
}

func createDefaultConfigFile() {
	dir := BuildI2NPDirPath()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warnf("could not create config dir: %s", err)
		return
	}
	path := filepath.Join(dir, "config.yaml")
	if err := viper.WriteConfigAs(path); err != nil {
		log.Warnf("could not write default config: %s", err)
		return
	}
	log.Debugf("wrote default config to %s", path)
}

// BuildI2NPDirPath returns the per-user configuration directory.
func BuildI2NPDirPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return GOI2NP_BASE_DIR
	}
	return filepath.Join(home, GOI2NP_BASE_DIR)
}

// NewRouterConfigFromViper creates a RouterConfig from current viper
// settings. This is the preferred way to read config instead of touching
// viper keys all over the tree.
func NewRouterConfigFromViper() *RouterConfig {
	return &RouterConfig{
		NetID:                viper.GetInt("netid"),
		NTPEnabled:           viper.GetBool("ntp.enabled"),
		NTPServers:           viper.GetStringSlice("ntp.servers"),
		TunnelDataQueueDepth: viper.GetInt("queues.tunnel_data"),
		NetDbQueueDepth:      viper.GetInt("queues.netdb"),
	}
}
