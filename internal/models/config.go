// Package models contains the data structures used throughout wakeonlan.
package models

// Config holds the complete configuration loaded from the config file.
type Config struct {
	StrictMAC bool // reject MAC addresses that are not 12 hex digits
	Defaults  TargetDefaults
	Hosts     map[string]HostConfig
	Telegram  *TelegramConfig // nil if not configured
}

// TargetDefaults apply to hosts that leave address or port empty.
type TargetDefaults struct {
	Address string
	Port    string
}

// HostConfig describes one machine that can be woken by name.
type HostConfig struct {
	Name       string
	MACAddress string
	Address    string // resolved from subnet when one is configured
	Subnet     string // IPv4 prefix, its last address is used as a directed broadcast
	Port       string
}
