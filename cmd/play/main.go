// Command play is the console client for the core's live wire protocol: it
// dials a solver instance listening for an opponent (cmd/solver play
// --listen), renders notify events to the terminal, and answers
// decide_request prompts by reading a line of input.
//
// Grounded in pokerforbots's cmd/holdem-client CLI shape (kong, charmbracelet/log
// setup) and sdk/ws_client.go's dial-then-loop client pattern, narrowed to the
// wire protocol internal/wsplayer speaks.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/holdem-cfr/internal/game"
	"github.com/lox/holdem-cfr/internal/player"
	"github.com/lox/holdem-cfr/internal/wsplayer"
)

var cli struct {
	Server string `help:"solver websocket URL to connect to" arg:"" default:"ws://localhost:8765/play"`
	Debug  bool   `help:"enable debug logging"`
}

func main() {
	kong.Parse(&cli, kong.Name("play"), kong.Description("console client for a live solver opponent"))

	logger := log.New(os.Stderr)
	if cli.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	p, err := wsplayer.Dial(cli.Server)
	if err != nil {
		logger.Fatal("could not connect", "server", cli.Server, "error", err)
	}
	defer p.Close()
	logger.Info("connected", "server", cli.Server)

	in := bufio.NewScanner(os.Stdin)
	for {
		kind, event, recall, err := p.NextEvent()
		if err != nil {
			logger.Info("connection closed", "error", err)
			return
		}
		switch kind {
		case wsplayer.MsgNotify:
			printEvent(event)
		case wsplayer.MsgDecideRequest:
			fmt.Printf("hand: %s  board: %s  pot %d> ", recall.Hole, recall.Board, recall.Pot)
			if !in.Scan() {
				return
			}
			action, err := parseConsoleAction(strings.TrimSpace(in.Text()))
			if err != nil {
				fmt.Println(err)
				continue
			}
			if err := p.RespondDecision(action); err != nil {
				logger.Error("send decision", "error", err)
			}
		}
	}
}

func printEvent(e player.Event) {
	switch e.Kind {
	case player.HandStart:
		fmt.Println("-- new hand --")
	case player.HoleCards:
		fmt.Printf("your hole cards: %s\n", e.Hole)
	case player.Board:
		fmt.Printf("board (%s): %s\n", e.Street, e.Board)
	case player.Action:
		fmt.Printf("seat %d: %s\n", e.Seat, e.Action)
	case player.HandEnd:
		fmt.Printf("-- hand over, your payout: %d --\n", e.Payout)
	default:
		fmt.Printf("[%s] seat=%d\n", e.Kind, e.Seat)
	}
}

func parseConsoleAction(line string) (game.Action, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return game.Action{}, fmt.Errorf("empty input")
	}
	amount := 0
	if len(fields) > 1 {
		if a, err := strconv.Atoi(fields[1]); err == nil {
			amount = a
		}
	}
	switch strings.ToLower(fields[0]) {
	case "fold":
		return game.Action{Kind: game.Fold}, nil
	case "check":
		return game.Action{Kind: game.Check}, nil
	case "call":
		return game.Action{Kind: game.Call, Amount: amount}, nil
	case "raise":
		return game.Action{Kind: game.Raise, Amount: amount}, nil
	case "shove":
		return game.Action{Kind: game.Shove, Amount: amount}, nil
	default:
		return game.Action{}, fmt.Errorf("unrecognized action %q", fields[0])
	}
}
