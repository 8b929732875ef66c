package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fgeck/wakeonlan/internal/config"
	"github.com/fgeck/wakeonlan/internal/models"
	"github.com/fgeck/wakeonlan/internal/services/runner"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	macAddress string
	address    string
	port       string
	extra      map[string]string
	async      bool
)

var wakeCmd = &cobra.Command{
	Use:   "wake [host...]",
	Short: "Send a magic packet to each target",
	Long: `Send one Wake-on-LAN magic packet to every named host from the config file
and, with --mac, to an ad hoc target.

Address defaults to 255.255.255.255 and port to 9. An address that is not an
IP literal or a port that is not a number falls back to these defaults.`,
	Example: `  wakeonlan wake --mac 00:0a:e4:4b:b0:94
  wakeonlan wake --mac AA:BB:CC:DD:EE:FF --address 192.168.1.255 --port 7 --extra requestId=42
  wakeonlan -c wakeonlan.yaml wake nas desktop
  wakeonlan -c wakeonlan.yaml wake --async nas desktop`,
	RunE: runWake,
}

func init() {
	wakeCmd.Flags().StringVarP(&macAddress, "mac", "m", "", "MAC address of an ad hoc target")
	wakeCmd.Flags().StringVarP(&address, "address", "a", "", "destination IP for the ad hoc target")
	wakeCmd.Flags().StringVarP(&port, "port", "p", "", "destination UDP port for the ad hoc target")
	wakeCmd.Flags().BoolVar(&async, "async", false, "dispatch packets in the background and wait for every completion")
	wakeCmd.Flags().StringToStringVarP(&extra, "extra", "e", nil, "pass-through key=value pairs echoed in every result")
}

func runWake(cmd *cobra.Command, args []string) error {
	cfg := &models.Config{}
	if configFile != "" {
		var err error
		cfg, err = config.NewParser().LoadFile(configFile)
		if err != nil {
			log.Error().Err(err).Str("file", configFile).Msg("failed to load config")
			return err
		}
		if err := config.Validate(cfg); err != nil {
			log.Error().Err(err).Msg("invalid configuration")
			return err
		}
	}

	targets, err := runner.SelectHosts(*cfg, args)
	if err != nil {
		log.Error().Err(err).Msg("invalid target")
		return err
	}

	if macAddress != "" {
		target := models.HostConfig{
			MACAddress: macAddress,
			Address:    address,
			Port:       port,
		}
		if target.Address == "" {
			target.Address = cfg.Defaults.Address
		}
		if target.Port == "" {
			target.Port = cfg.Defaults.Port
		}
		targets = append(targets, target)
	}

	if len(targets) == 0 {
		log.Error().Msg("nothing to wake: pass host names or --mac")
		return cmd.Help()
	}

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Warn().Str("signal", sig.String()).Msg("received signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	pass := make(map[string]any, len(extra))
	for k, v := range extra {
		pass[k] = v
	}

	runnerSvc := runner.New(log.Logger, cfg.StrictMAC, runner.WithAsync(async))
	results, err := runnerSvc.Run(ctx, *cfg, targets, pass)
	for _, r := range results {
		log.Info().
			Str("host", r.Host).
			Dict("result", zerolog.Dict().Fields(r.Fields())).
			Msg("wake result")
	}
	if err != nil {
		log.Error().Err(err).Msg("wake failed")
		return err
	}

	log.Info().Int("targets", len(results)).Msg("all magic packets sent")
	return nil
}
