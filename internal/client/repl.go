package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/cardroom/blackjack/internal/display"
	"github.com/cardroom/blackjack/internal/server"
)

// Config holds client startup options.
type Config struct {
	Server string
	Name   string
	Token  string
}

// errQuit ends the REPL without reporting an error.
var errQuit = fmt.Errorf("quit")

// Run connects to the server and drives the interactive loop until the
// user quits or the connection drops.
func Run(config Config) error {
	logger := log.New(os.Stderr)
	logger.SetLevel(log.WarnLevel)

	name := config.Name
	if name == "" {
		if u, err := user.Current(); err == nil && u.Username != "" {
			name = u.Username
		} else {
			name = "Player"
		}
	}

	c := NewClient(config.Server, logger)
	if err := c.Connect(); err != nil {
		return err
	}
	defer func() { _ = c.Disconnect() }()

	if err := c.Send(server.MessageTypeAuth, server.AuthData{Nickname: name, Token: config.Token}); err != nil {
		return err
	}

	repl := &repl{
		client:   c,
		renderer: display.NewRenderer(),
		out:      os.Stdout,
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	group, ctx := errgroup.WithContext(context.Background())
	group.Go(func() error { return repl.messageLoop(ctx) })
	group.Go(func() error { return repl.inputLoop(ctx, lines) })

	if err := group.Wait(); err != nil && err != errQuit {
		return err
	}
	return nil
}

type repl struct {
	client   *Client
	renderer *display.Renderer
	out      *os.File
}

func (r *repl) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// messageLoop renders every server message as it arrives.
func (r *repl) messageLoop(ctx context.Context) error {
	for {
		select {
		case msg, ok := <-r.client.Receive():
			if !ok {
				return fmt.Errorf("connection closed")
			}
			r.render(msg)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *repl) render(msg *server.Message) {
	switch msg.Type {
	case server.MessageTypeAuthResponse:
		var data server.AuthResponseData
		if json.Unmarshal(msg.Data, &data) == nil && data.Success {
			r.printf("Welcome back, %s! You have $%d", data.Profile.Nickname, data.Profile.Chips)
		}
	case server.MessageTypeError:
		var data server.ErrorData
		if json.Unmarshal(msg.Data, &data) == nil {
			r.printf("Error: %s", data.Message)
		}
	case server.MessageTypeRoomList:
		var data server.RoomListData
		if json.Unmarshal(msg.Data, &data) == nil {
			r.printf("%s", r.renderer.RoomList(data))
		}
	case server.MessageTypeRoomJoined:
		var data server.RoomJoinedData
		if json.Unmarshal(msg.Data, &data) == nil {
			r.printf("Joined %s with %s", data.Room, strings.Join(data.Players, ", "))
		}
	case server.MessageTypeRoomLeft:
		r.printf("Left the room")
	case server.MessageTypePlayerJoined:
		var data server.PlayerJoinedData
		if json.Unmarshal(msg.Data, &data) == nil {
			r.printf("%s sat down", data.Player)
		}
	case server.MessageTypePlayerLeft:
		var data server.PlayerLeftData
		if json.Unmarshal(msg.Data, &data) == nil {
			r.printf("%s left", data.Player)
		}
	case server.MessageTypeRoundStarted:
		var data server.RoundStartedData
		if json.Unmarshal(msg.Data, &data) == nil {
			r.printf("%s", r.renderer.RoundStarted(data))
		}
	case server.MessageTypeBetPlaced:
		var data server.BetPlacedData
		if json.Unmarshal(msg.Data, &data) == nil {
			r.printf("%s", r.renderer.BetPlaced(data))
		}
	case server.MessageTypeHandDealt:
		var data server.HandDealtData
		if json.Unmarshal(msg.Data, &data) == nil {
			r.printf("%s", r.renderer.HandDealt(data))
		}
	case server.MessageTypeActionResult:
		var data server.ActionResultData
		if json.Unmarshal(msg.Data, &data) == nil {
			r.printf("%s", r.renderer.ActionResult(data))
		}
	case server.MessageTypeRoomState:
		var data server.RoomStateData
		if json.Unmarshal(msg.Data, &data) == nil {
			r.printf("%s", r.renderer.RoomState(data))
		}
	case server.MessageTypeSettlement:
		var data server.SettlementData
		if json.Unmarshal(msg.Data, &data) == nil {
			r.printf("%s", r.renderer.Settlement(data))
		}
	case server.MessageTypeCheckinResult:
		var data server.CheckinResultData
		if json.Unmarshal(msg.Data, &data) == nil {
			r.printf("%s", r.renderer.Checkin(data))
		}
	case server.MessageTypeProfile:
		var data server.ProfileData
		if json.Unmarshal(msg.Data, &data) == nil {
			r.printf("%s", r.renderer.Profile(data))
		}
	case server.MessageTypeLeaderboardResult:
		var data server.LeaderboardResultData
		if json.Unmarshal(msg.Data, &data) == nil {
			r.printf("%s", r.renderer.Leaderboard(data))
		}
	}
}

// inputLoop parses commands typed by the user.
func (r *repl) inputLoop(ctx context.Context, lines <-chan string) error {
	r.printf("Type 'help' for commands")
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return errQuit
			}
			if err := r.handleCommand(line); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *repl) handleCommand(line string) error {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "q", "exit":
		return errQuit

	case "help", "?":
		r.printHelp()
		return nil

	case "rooms":
		return r.client.Send(server.MessageTypeListRooms, struct{}{})

	case "join":
		if len(args) != 1 {
			r.printf("Usage: join <room>")
			return nil
		}
		return r.client.Send(server.MessageTypeJoinRoom, server.JoinRoomData{Room: args[0]})

	case "leave":
		return r.client.Send(server.MessageTypeLeaveRoom, struct{}{})

	case "start", "deal":
		return r.client.Send(server.MessageTypeStartRound, struct{}{})

	case "bet":
		if len(args) != 1 {
			r.printf("Usage: bet <amount>")
			return nil
		}
		amount, err := strconv.Atoi(args[0])
		if err != nil {
			r.printf("Invalid amount: %s", args[0])
			return nil
		}
		return r.client.Send(server.MessageTypePlaceBet, server.PlaceBetData{Amount: amount})

	case "hit", "h":
		return r.client.Send(server.MessageTypePlayAction, server.PlayActionData{Action: "hit"})
	case "stand", "s":
		return r.client.Send(server.MessageTypePlayAction, server.PlayActionData{Action: "stand"})
	case "double", "d":
		return r.client.Send(server.MessageTypePlayAction, server.PlayActionData{Action: "double"})
	case "split", "sp":
		return r.client.Send(server.MessageTypePlayAction, server.PlayActionData{Action: "split"})

	case "state", "table":
		return r.client.Send(server.MessageTypeGetState, struct{}{})

	case "checkin", "ci":
		return r.client.Send(server.MessageTypeCheckin, struct{}{})

	case "profile", "me":
		return r.client.Send(server.MessageTypeGetProfile, struct{}{})

	case "top":
		kind := "chips"
		if len(args) > 0 {
			kind = args[0]
		}
		return r.client.Send(server.MessageTypeLeaderboard, server.LeaderboardData{Kind: kind})

	default:
		r.printf("Unknown command: %s. Type 'help' for available commands.", cmd)
		return nil
	}
}

func (r *repl) printHelp() {
	r.printf("Game:")
	r.printf("  rooms         - List rooms")
	r.printf("  join <room>   - Sit down in a room")
	r.printf("  leave         - Leave the room")
	r.printf("  start         - Open betting for a new round")
	r.printf("  bet <amount>  - Place your bet")
	r.printf("  hit/stand/double/split - Play your hand")
	r.printf("  state         - Show the table")
	r.printf("Profile:")
	r.printf("  checkin       - Claim the daily reward")
	r.printf("  profile       - Show your record")
	r.printf("  top [kind]    - Leaderboard (chips, wins, blackjacks)")
	r.printf("Utility:")
	r.printf("  help          - Show this help")
	r.printf("  quit          - Exit")
}
