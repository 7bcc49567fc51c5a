package main

import (
	"strings"

	"github.com/alecthomas/kong"

	"github.com/cardroom/blackjack/internal/client"
)

type cli struct {
	Server string `kong:"default='ws://localhost:8080/ws',help='WebSocket server URL'"`
	Name   string `kong:"default='',help='Display name (defaults to $USER or \"Player\")'"`
	Token  string `kong:"default='',help='Auth token, only needed when the server validates tokens'"`
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("blackjack-client"),
		kong.Description("Interactive CLI client for the blackjack server"),
		kong.UsageOnError(),
	)

	config := client.Config{
		Server: strings.TrimSpace(c.Server),
		Name:   strings.TrimSpace(c.Name),
		Token:  strings.TrimSpace(c.Token),
	}

	if err := client.Run(config); err != nil {
		ctx.FatalIfErrorf(err)
	}
}
