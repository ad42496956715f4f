package hanabi

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ParseMove turns interactive command text into a move payload.
// Card and player numbers are 1-based on the command line:
//
//	play 2
//	discard 1
//	hint 2 red
//	hint 3 5
func ParseMove(line string) (json.RawMessage, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil, errors.New("empty move")
	}

	var mov Move
	switch tokens[0] {
	case MovePlay, MoveDiscard:
		if len(tokens) != 2 {
			return nil, errors.New("usage: play|discard <card>")
		}
		index, err := parseIndex(tokens[1])
		if err != nil {
			return nil, err
		}
		mov = Move{Type: tokens[0], Index: index}
	case MoveHint:
		if len(tokens) != 3 {
			return nil, errors.New("usage: hint <player> <color|value>")
		}
		player, err := parseIndex(tokens[1])
		if err != nil {
			return nil, err
		}
		hint, err := parseHint(tokens[2])
		if err != nil {
			return nil, err
		}
		mov = Move{Type: MoveHint, Player: player, Hint: hint}
	default:
		return nil, errors.New("unknown move; expected play, discard or hint")
	}
	return json.Marshal(mov)
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New("expected a 1-based number")
	}
	return n - 1, nil
}

func parseHint(s string) (*Hint, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return &Hint{Value: v}, nil
	}
	c := Color(strings.ToLower(s))
	if colorIndex(c) < 0 {
		return nil, errors.New("could not parse hint as color or value")
	}
	return &Hint{Color: c}, nil
}
