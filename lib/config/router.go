package config

// RouterConfig is the configurable surface of the message layer daemon.
type RouterConfig struct {
	// NetID separates I2P networks; the production network is 2.
	NetID int
	// NTPEnabled turns on the SNTP-disciplined clock for header
	// expirations.
	NTPEnabled bool
	// NTPServers queried by the timestamper.
	NTPServers []string
	// TunnelDataQueueDepth bounds the tunnel registry's data queue.
	TunnelDataQueueDepth int
	// NetDbQueueDepth bounds the network database message queue.
	NetDbQueueDepth int
}

var defaultRouterConfig = &RouterConfig{
	NetID:                2,
	NTPEnabled:           false,
	NTPServers:           []string{"0.pool.ntp.org", "1.pool.ntp.org", "2.pool.ntp.org"},
	TunnelDataQueueDepth: 1024,
	NetDbQueueDepth:      256,
}

// DefaultRouterConfig returns the built-in defaults.
func DefaultRouterConfig() *RouterConfig {
	return defaultRouterConfig
}
