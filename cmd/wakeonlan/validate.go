package main

import (
	"fmt"
	"os"

	"github.com/fgeck/wakeonlan/internal/config"
	"github.com/fgeck/wakeonlan/internal/services/wol"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long:  `Validate the configuration file without sending any packets.`,
	RunE:  validateConfig,
}

func validateConfig(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		log.Error().Msg("config file is required")
		return cmd.Help()
	}

	// Check if file exists
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		log.Error().Str("file", configFile).Msg("config file not found")
		return fmt.Errorf("config file not found: %s", configFile)
	}

	// Load configuration
	parser := config.NewParser()
	cfg, err := parser.LoadFile(configFile)
	if err != nil {
		log.Error().Err(err).Str("file", configFile).Msg("failed to parse config")
		return err
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Error().Err(err).Msg("configuration validation failed")
		return err
	}

	// Print configuration summary
	fmt.Println("Configuration is valid!")
	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  Strict MAC validation: %v\n", cfg.StrictMAC)
	fmt.Printf("  Default address: %s\n", wol.ResolveAddress(cfg.Defaults.Address))
	fmt.Printf("  Default port: %d\n", wol.ResolvePort(cfg.Defaults.Port))
	fmt.Printf("  Telegram: %v\n", cfg.Telegram != nil)

	names := config.HostNames(cfg)
	fmt.Println()
	fmt.Printf("Hosts (%d):\n", len(names))
	for _, name := range names {
		host := cfg.Hosts[name]
		mac := wol.NormalizeMAC(host.MACAddress)
		fmt.Printf("  %s: %s -> %s:%d\n", name, host.MACAddress, wol.ResolveAddress(host.Address), wol.ResolvePort(host.Port))
		if !wol.ValidMAC(mac) {
			fmt.Printf("    warning: %q is not a 12 digit hex MAC address\n", host.MACAddress)
		}
		if host.Subnet != "" {
			fmt.Printf("    subnet: %s\n", host.Subnet)
		}
	}

	if cfg.Telegram != nil {
		fmt.Println()
		fmt.Println("Telegram Configuration:")
		fmt.Printf("  Chat ID: %s\n", cfg.Telegram.ChatID)
		fmt.Printf("  Bot Token: (configured)\n")
	}

	return nil
}
