// Package config provides configuration file parsing.
package config

import (
	"fmt"
	"net/netip"
	"os"
	"sort"
	"strings"

	"github.com/fgeck/wakeonlan/internal/models"
	"github.com/spf13/viper"
	"go4.org/netipx"
)

// Parser handles configuration file parsing.
type Parser struct {
	v *viper.Viper
}

// NewParser creates a new configuration parser.
func NewParser() *Parser {
	v := viper.New()
	v.SetConfigType("yaml")
	return &Parser{v: v}
}

// LoadFile loads configuration from a file path.
func (p *Parser) LoadFile(path string) (*models.Config, error) {
	p.v.SetConfigFile(path)

	if err := p.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return p.parse()
}

// LoadReader loads configuration from a reader (useful for testing).
func (p *Parser) LoadReader(content string) (*models.Config, error) {
	if err := p.v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return p.parse()
}

func (p *Parser) parse() (*models.Config, error) {
	cfg := &models.Config{
		StrictMAC: p.v.GetBool("strict_mac"),
		Defaults: models.TargetDefaults{
			Address: p.v.GetString("defaults.address"),
			Port:    p.v.GetString("defaults.port"),
		},
		Hosts: make(map[string]models.HostConfig),
	}

	if cfg.Defaults.Address != "" {
		if _, err := netip.ParseAddr(cfg.Defaults.Address); err != nil {
			return nil, fmt.Errorf("defaults.address must be an IP address: %w", err)
		}
	}

	// Parse named hosts. Viper lowercases keys, so host names are case-insensitive.
	for name := range p.v.GetStringMap("hosts") {
		host, err := p.parseHost(name, cfg.Defaults)
		if err != nil {
			return nil, err
		}
		cfg.Hosts[name] = host
	}

	// Parse optional Telegram config.
	if p.v.IsSet("telegram") {
		cfg.Telegram = &models.TelegramConfig{
			BotToken: p.expandEnv(p.v.GetString("telegram.bot_token")),
			ChatID:   p.expandEnv(p.v.GetString("telegram.chat_id")),
		}

		if cfg.Telegram.BotToken == "" {
			return nil, fmt.Errorf("telegram.bot_token is required when telegram is configured")
		}
		if cfg.Telegram.ChatID == "" {
			return nil, fmt.Errorf("telegram.chat_id is required when telegram is configured")
		}
	}

	return cfg, nil
}

func (p *Parser) parseHost(name string, defaults models.TargetDefaults) (models.HostConfig, error) {
	key := "hosts." + name
	host := models.HostConfig{
		Name:       name,
		MACAddress: p.expandEnv(p.v.GetString(key + ".mac_address")),
		Address:    p.v.GetString(key + ".address"),
		Subnet:     p.v.GetString(key + ".subnet"),
		Port:       p.v.GetString(key + ".port"),
	}

	if host.MACAddress == "" {
		return host, fmt.Errorf("%s.mac_address is required", key)
	}
	if host.Address != "" && host.Subnet != "" {
		return host, fmt.Errorf("%s: address and subnet are mutually exclusive", key)
	}

	if host.Subnet != "" {
		bcast, err := DirectedBroadcast(host.Subnet)
		if err != nil {
			return host, fmt.Errorf("%s.subnet: %w", key, err)
		}
		host.Address = bcast.String()
	}

	// Set defaults.
	if host.Address == "" {
		host.Address = defaults.Address
	}
	if host.Port == "" {
		host.Port = defaults.Port
	}

	return host, nil
}

// DirectedBroadcast returns the last address of an IPv4 prefix.
func DirectedBroadcast(cidr string) (netip.Addr, error) {
	prefix, err := netip.ParsePrefix(strings.TrimSpace(cidr))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("invalid CIDR %q: %w", cidr, err)
	}
	if !prefix.Addr().Is4() {
		return netip.Addr{}, fmt.Errorf("directed broadcast needs an IPv4 prefix, got %q", cidr)
	}
	return netipx.PrefixLastIP(prefix.Masked()), nil
}

// expandEnv expands environment variables in the format ${VAR} or $VAR.
func (p *Parser) expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Validate performs validation on the loaded configuration.
func Validate(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	for _, name := range HostNames(cfg) {
		if cfg.Hosts[name].MACAddress == "" {
			return fmt.Errorf("hosts.%s.mac_address is required", name)
		}
	}

	return nil
}

// HostNames returns the configured host names in sorted order.
func HostNames(cfg *models.Config) []string {
	names := make([]string, 0, len(cfg.Hosts))
	for name := range cfg.Hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
