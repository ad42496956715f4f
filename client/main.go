package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"

	"github.com/wfunc/roomserver/hanabi"
	"github.com/wfunc/roomserver/network"
)

const usage = `commands:
  login <name>            log in
  logout                  log out
  new <min> <max> [variant]  create a room (variant: base|multi|multihard)
  enter <id>              watch a room
  leave                   stop watching
  join                    join the watched room
  start                   start the game in the watched room
  play <card> | discard <card> | hint <player> <color|value>`

func main() {
	cmd := &cli.Command{
		Name:  "roomserver-client",
		Usage: "interactive client for the room server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "address",
				Value: "ws://localhost:9284/ws",
				Usage: "websocket address of the server",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(cmd.String("address"))
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(address string) error {
	log.Printf("Connecting to %s", address)
	conn, _, err := websocket.DefaultDialer.Dial(address, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				log.Println("Connection closed:", err)
				return
			}
			resp, err := network.DecodeResponse(frame)
			if err != nil {
				log.Printf("Bad frame from server: %v", err)
				continue
			}
			printResponse(resp)
		}
	}()

	// Write loop
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println(usage)
	for scanner.Scan() {
		select {
		case <-done:
			return nil
		default:
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		action, err := parseCommand(line)
		if err != nil {
			fmt.Println(err)
			fmt.Println(usage)
			continue
		}
		frame, err := json.Marshal(action)
		if err != nil {
			return err
		}
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return fmt.Errorf("write failed: %w", err)
		}
	}
	return scanner.Err()
}

// parseCommand maps one input line to an action. Anything that is not
// a built-in command is tried as a game move.
func parseCommand(line string) (*network.Action, error) {
	tokens := strings.Fields(line)
	switch tokens[0] {
	case "login":
		if len(tokens) != 2 {
			return nil, fmt.Errorf("usage: login <name>")
		}
		return &network.Action{Type: network.ActionLogin, Name: tokens[1]}, nil
	case "logout":
		return &network.Action{Type: network.ActionLogout}, nil
	case "leave":
		return &network.Action{Type: network.ActionLeaveRoom}, nil
	case "join":
		return &network.Action{Type: network.ActionJoinRoom}, nil
	case "start":
		return &network.Action{Type: network.ActionStartGame}, nil
	case "enter":
		if len(tokens) != 2 {
			return nil, fmt.Errorf("usage: enter <room id>")
		}
		id, err := strconv.ParseInt(tokens[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("could not parse room id %q", tokens[1])
		}
		return &network.Action{Type: network.ActionWatchRoom, RoomID: id}, nil
	case "new":
		if len(tokens) < 3 || len(tokens) > 4 {
			return nil, fmt.Errorf("usage: new <min> <max> [variant]")
		}
		minPlayers, err := strconv.Atoi(tokens[1])
		if err != nil {
			return nil, fmt.Errorf("could not parse min players %q", tokens[1])
		}
		maxPlayers, err := strconv.Atoi(tokens[2])
		if err != nil {
			return nil, fmt.Errorf("could not parse max players %q", tokens[2])
		}
		settings := ""
		if len(tokens) == 4 {
			settings = tokens[3]
		}
		return &network.Action{
			Type:       network.ActionNewRoom,
			MinPlayers: minPlayers,
			MaxPlayers: maxPlayers,
			Settings:   settings,
		}, nil
	default:
		move, err := hanabi.ParseMove(line)
		if err != nil {
			return nil, err
		}
		return &network.Action{Type: network.ActionMakeMove, Move: move}, nil
	}
}

func printResponse(resp *network.Response) {
	switch resp.Type {
	case network.ResponseNotLoggedIn:
		fmt.Println("Please log in: login <username>")
	case network.ResponseError:
		fmt.Println("Error:", resp.Message)
	case network.ResponseRoomList:
		fmt.Println("Rooms:")
		for _, room := range resp.Rooms {
			printRoomLine(room)
		}
	case network.ResponseRoom:
		printRoomLine(resp.Room)
		if len(resp.Room.Game) > 0 {
			var pretty struct {
				Hints  int            `json:"hints"`
				Lives  int            `json:"lives"`
				Played map[string]int `json:"played"`
				Next   *int           `json:"next_player"`
			}
			if err := json.Unmarshal(resp.Room.Game, &pretty); err == nil {
				fmt.Printf("  hints %d | lives %d | played %v\n", pretty.Hints, pretty.Lives, pretty.Played)
				if pretty.Next != nil {
					fmt.Printf("  next player: %s\n", playerName(resp.Room.Players, *pretty.Next))
				} else {
					fmt.Println("  game over")
				}
			}
			fmt.Printf("  state: %s\n", resp.Room.Game)
		}
	default:
		fmt.Printf("Unknown response: %+v\n", resp)
	}
}

func printRoomLine(room *network.RoomView) {
	if room.Phase == network.PhaseWaiting {
		fmt.Printf("%5d: %-7s %-10s %d-%d  %s\n", room.RoomID, room.Phase, room.Settings,
			room.MinPlayers, room.MaxPlayers, strings.Join(room.Players, ", "))
		return
	}
	fmt.Printf("%5d: %-7s %-10s      %s\n", room.RoomID, room.Phase, room.Settings,
		strings.Join(room.Players, ", "))
}

func playerName(players []string, index int) string {
	if index < 0 || index >= len(players) {
		return strconv.Itoa(index)
	}
	return players[index]
}
