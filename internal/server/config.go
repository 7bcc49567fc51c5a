package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/cardroom/blackjack/internal/deck"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server   ServerSettings  `hcl:"server,block"`
	Rooms    []RoomConfig    `hcl:"room,block"`
	Profiles ProfileSettings `hcl:"profiles,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address      string `hcl:"address,optional"`
	Port         int    `hcl:"port,optional"`
	LogLevel     string `hcl:"log_level,optional"`
	AuthEndpoint string `hcl:"auth_endpoint,optional"`
	AuthSecret   string `hcl:"auth_secret,optional"`
}

// RoomConfig defines a blackjack room configuration
type RoomConfig struct {
	Name       string `hcl:"name,label"`
	Decks      int    `hcl:"decks,optional"`
	MinBet     int    `hcl:"min_bet,optional"`
	MaxBet     int    `hcl:"max_bet,optional"`
	MaxPlayers int    `hcl:"max_players,optional"`
}

// ProfileSettings configures persistent player profiles
type ProfileSettings struct {
	Path string `hcl:"path,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Rooms: []RoomConfig{
			{
				Name:       "main",
				Decks:      deck.StandardDecks,
				MinBet:     1,
				MaxBet:     500,
				MaxPlayers: 6,
			},
		},
		Profiles: ProfileSettings{
			Path: "profiles.csv",
		},
	}
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Profiles.Path == "" {
		config.Profiles.Path = "profiles.csv"
	}

	if len(config.Rooms) == 0 {
		config.Rooms = DefaultServerConfig().Rooms
	}
	for i := range config.Rooms {
		if config.Rooms[i].Decks == 0 {
			config.Rooms[i].Decks = deck.StandardDecks
		}
		if config.Rooms[i].MinBet == 0 {
			config.Rooms[i].MinBet = 1
		}
		if config.Rooms[i].MaxBet == 0 {
			config.Rooms[i].MaxBet = config.Rooms[i].MinBet * 500
		}
		if config.Rooms[i].MaxPlayers == 0 {
			config.Rooms[i].MaxPlayers = 6
		}
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if len(c.Rooms) == 0 {
		return fmt.Errorf("at least one room must be configured")
	}

	seen := make(map[string]bool)
	for _, room := range c.Rooms {
		if seen[room.Name] {
			return fmt.Errorf("duplicate room name: %s", room.Name)
		}
		seen[room.Name] = true

		if room.Decks < 1 || room.Decks > 8 {
			return fmt.Errorf("room %s: decks must be between 1 and 8", room.Name)
		}
		if room.MinBet <= 0 {
			return fmt.Errorf("room %s: min bet must be positive", room.Name)
		}
		if room.MaxBet < room.MinBet {
			return fmt.Errorf("room %s: max bet must be at least the min bet", room.Name)
		}
		if room.MaxPlayers < 1 || room.MaxPlayers > 7 {
			return fmt.Errorf("room %s: max players must be between 1 and 7", room.Name)
		}
	}

	if c.Profiles.Path == "" {
		return fmt.Errorf("profiles path must be set")
	}

	if c.Server.AuthSecret != "" && c.Server.AuthEndpoint == "" {
		return fmt.Errorf("auth_secret requires auth_endpoint")
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GetRoomByName returns a room configuration by name
func (c *ServerConfig) GetRoomByName(name string) *RoomConfig {
	for _, room := range c.Rooms {
		if room.Name == name {
			return &room
		}
	}
	return nil
}
