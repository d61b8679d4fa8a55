package main

import (
	"os"
	"os/signal"
	"syscall"

	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/logger"
	"github.com/spf13/cobra"

	"github.com/go-i2p/go-i2np/lib/config"
	"github.com/go-i2p/go-i2np/lib/garlic"
	"github.com/go-i2p/go-i2np/lib/i2np"
	"github.com/go-i2p/go-i2np/lib/netdb"
	"github.com/go-i2p/go-i2np/lib/router"
	"github.com/go-i2p/go-i2np/lib/tunnel"
	"github.com/go-i2p/go-i2np/lib/util/time/sntp"
)

var log = logger.GetGoI2PLogger()

var rootCmd = &cobra.Command{
	Use:   "go-i2np",
	Short: "I2NP message layer daemon",
	Long:  "Runs the I2NP message layer with an ephemeral router identity, for development and interop testing.",
	RunE:  run,
}

func init() {
	cobra.OnInitialize(config.InitConfig)
	rootCmd.PersistentFlags().StringVar(&config.CfgFile, "config", "", "config file (default $HOME/.go-i2np/config.yaml)")
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.NewRouterConfigFromViper()

	ctx, err := router.NewEphemeralContext(nil)
	if err != nil {
		return err
	}

	registry := tunnel.NewRegistry(cfg.TunnelDataQueueDepth)
	db := netdb.NewStdNetDB(cfg.NetDbQueueDepth, nil)
	garlicRouter := garlic.NewRouter(0)

	collaborators := i2np.Collaborators{
		Context:    ctx,
		NetDB:      db,
		Transports: discardTransports{},
		Tunnels:    registry,
		Garlic:     garlicRouter,
	}
	if cfg.NTPEnabled {
		timestamper := sntp.NewRouterTimestamper(cfg.NTPServers, nil)
		timestamper.Start()
		defer timestamper.Stop()
		collaborators.Clock = timestamper
	}

	subsystem := i2np.New(collaborators)
	registry.SetForwarder(subsystem)

	log.Debug("i2np message layer up")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Debug("shutting down")
	return nil
}

// discardTransports drops outbound messages. The daemon runs without a
// real transport layer; wire one in by implementing i2np.Transports.
type discardTransports struct{}

func (discardTransports) SendTo(ident common.Hash, msg *i2np.Message) {
	log.WithField("ident", ident[0:4]).Debug("discarding outbound message, no transport configured")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("go-i2np failed: %s", err)
		os.Exit(1)
	}
}
