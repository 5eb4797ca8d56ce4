package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem-cfr/internal/card"
	"github.com/lox/holdem-cfr/internal/cfr"
	"github.com/lox/holdem-cfr/internal/config"
	"github.com/lox/holdem-cfr/internal/game"
	"github.com/lox/holdem-cfr/internal/lookup"
	"github.com/lox/holdem-cfr/internal/nlhe"
	"github.com/lox/holdem-cfr/internal/player"
	"github.com/lox/holdem-cfr/internal/sink"
	"github.com/lox/holdem-cfr/internal/subgame"
	"github.com/lox/holdem-cfr/internal/wsplayer"
)

// PlayCmd serves a trained blueprint against a Player over repeated heads-up
// hands, dealing its own cards and driving both seats' Decide calls (the
// blueprint seat picks its edge via decideBotEdge, a subgame refinement when
// the subgame config enables it and a Strategy sample otherwise; the
// opponent seat goes
// through player.DecideWithClock so a live human or bot faces the same
// deadline discipline cmd/play's wire transport will enforce).
type PlayCmd struct {
	Config     string        `help:"path to an HCL config file (defaults apply if absent)"`
	Checkpoint string        `help:"path to a trained blueprint checkpoint" required:""`
	Hands      int           `help:"number of hands to play" default:"1"`
	Seed       int64         `help:"random seed" default:"1"`
	Deadline   time.Duration `help:"opponent decision deadline" default:"30s"`
	BotSeat    int           `help:"seat the blueprint occupies (0 or 1)" default:"0"`
	Listen     string        `help:"listen address to accept a wsplayer opponent instead of the console (e.g. :8765)"`
	Tables     string        `help:"path to an abstraction sink dump (cluster --out) to hydrate lookup tables from"`
}

func (cmd *PlayCmd) Run(_ context.Context) error {
	cfg, err := config.Load(cmd.Config)
	if err != nil {
		return fmt.Errorf("play: load config: %w", err)
	}
	gameCfg := game.Config{
		Stack:      cfg.Game.Stack,
		SmallBlind: cfg.Game.SmallBlind,
		BigBlind:   cfg.Game.BigBlind,
		MaxRaises:  cfg.Game.MaxRaises,
	}

	snap, err := cfr.LoadCheckpoint(cmd.Checkpoint)
	if err != nil {
		return fmt.Errorf("play: load checkpoint: %w", err)
	}
	profile := cfr.NewProfile(cfg.Training.PolicyMin)
	cfr.Restore(profile, snap)
	logger.Info("loaded blueprint", "checkpoint", cmd.Checkpoint, "epoch", snap.Epoch)

	tables := nlhe.Tables{RiverBuckets: cfg.Cluster.EquityBuckets}
	if cmd.Tables != "" {
		store, err := sink.LoadJSON(cmd.Tables)
		if err != nil {
			return fmt.Errorf("play: load abstraction tables: %w", err)
		}
		tables, err = hydrateTables(store, cfg.Cluster.EquityBuckets)
		if err != nil {
			return fmt.Errorf("play: hydrate lookup tables: %w", err)
		}
		logger.Info("hydrated lookup tables",
			"preflop", tables.Preflop.Len(), "flop", tables.Flop.Len(), "turn", tables.Turn.Len())
	}
	enc := nlhe.NewEncoder(tables)
	strategy := nlhe.NewStrategy(profile, enc)

	var human player.Player
	if cmd.Listen != "" {
		conn, err := acceptOneConnection(cmd.Listen)
		if err != nil {
			return fmt.Errorf("play: accept opponent: %w", err)
		}
		human = wsplayer.Wrap(conn)
		logger.Info("opponent connected over websocket", "listen", cmd.Listen)
	} else {
		human = &consolePlayer{in: bufio.NewScanner(os.Stdin)}
	}
	clock := quartz.NewReal()
	rng := rand.New(rand.NewSource(cmd.Seed))

	botSeat := cmd.BotSeat
	var net int
	for hand := 0; hand < cmd.Hands; hand++ {
		payoff, err := playHand(rng, gameCfg, profile, enc, strategy, human, clock, cmd.Deadline, botSeat, cfg.Subgame)
		if err != nil {
			return fmt.Errorf("play: hand %d: %w", hand, err)
		}
		net += payoff
		logger.Info("hand complete", "hand", hand, "payoff", payoff, "net", net)
	}
	return nil
}

// hydrateTables rebuilds the per-street frozen lookup tables from the
// persisted isomorphism table, splitting rows by each abstraction's street
// tag. River needs no table (equity is quantized directly at inference).
func hydrateTables(store sink.KV, riverBuckets int) (nlhe.Tables, error) {
	builders := map[card.Street]*lookup.Builder{
		card.Preflop: lookup.NewBuilder(),
		card.Flop:    lookup.NewBuilder(),
		card.Turn:    lookup.NewBuilder(),
	}
	err := store.Scan(sink.Isomorphism, func(key, value []byte) error {
		obs := int64(binary.LittleEndian.Uint64(key))
		tagged := int16(binary.LittleEndian.Uint16(value))
		street := card.AbstractionFromI16(tagged).Street()
		if b, ok := builders[street]; ok {
			b.Set(obs, tagged)
		}
		return nil
	})
	if err != nil {
		return nlhe.Tables{}, err
	}

	tables := nlhe.Tables{RiverBuckets: riverBuckets}
	freeze := func(b *lookup.Builder) (*lookup.Table, error) {
		if b.Len() == 0 {
			return nil, nil
		}
		return b.Freeze()
	}
	if tables.Preflop, err = freeze(builders[card.Preflop]); err != nil {
		return nlhe.Tables{}, err
	}
	if tables.Flop, err = freeze(builders[card.Flop]); err != nil {
		return nlhe.Tables{}, err
	}
	if tables.Turn, err = freeze(builders[card.Turn]); err != nil {
		return nlhe.Tables{}, err
	}
	return tables, nil
}

// acceptOneConnection blocks until a single websocket client connects to
// addr's /play path, then returns its connection and stops serving further
// requests; a blueprint plays one opponent connection per process lifetime.
func acceptOneConnection(addr string) (*websocket.Conn, error) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	connCh := make(chan *websocket.Conn, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/play", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			errCh <- err
			return
		}
		connCh <- conn
	})
	server := &http.Server{Addr: addr, Handler: mux}
	go server.ListenAndServe()

	select {
	case conn := <-connCh:
		go server.Close()
		return conn, nil
	case err := <-errCh:
		return nil, err
	}
}

// playHand runs one hand to completion, returning botSeat's net chip result.
// subgameCfg.Iterations > 0 with subgameCfg.Alts > 0 triggers a
// depth-limited subgame refinement
// (internal/nlhe.Refine) at each of the bot's decisions instead of sampling
// the frozen blueprint directly.
func playHand(rng *rand.Rand, cfg game.Config, blueprint *cfr.Profile, enc *nlhe.Encoder, strategy *nlhe.Strategy, human player.Player, clock quartz.Clock, deadline time.Duration, botSeat int, subgameCfg config.SubgameConfig) (int, error) {
	deck := card.NewDeck(rng)
	h0, _ := deck.DealHand(2)
	h1, _ := deck.DealHand(2)
	holes := [2]card.Hole{
		card.NewHole(h0.Cards()[0], h0.Cards()[1]),
		card.NewHole(h1.Cards()[0], h1.Cards()[1]),
	}
	humanSeat := 1 - botSeat

	root := nlhe.NewRoot(cfg, holes)
	state := root
	// Every edge applied since root, in order — the public history the
	// subgame refiner replays to reach-weight the opponent's range.
	var history []cfr.Edge
	human.Notify(player.Event{Kind: player.HandStart})
	human.Notify(player.Event{Kind: player.HoleCards, Seat: humanSeat, Hole: holes[humanSeat]})

	for {
		kind, actor := state.Turn()
		switch kind {
		case cfr.Terminal:
			payoff := int(state.Payoff(botSeat))
			human.Notify(player.Event{Kind: player.HandEnd, Payout: int(state.Payoff(humanSeat))})
			return payoff, nil

		case cfr.Chance:
			next, ok := state.Underlying().Street.Next()
			if !ok {
				return 0, fmt.Errorf("play: chance node at terminal street")
			}
			dealt, ok := deck.DealHand(next.NRevealed())
			if !ok {
				return 0, fmt.Errorf("play: deck exhausted dealing %s", next)
			}
			draw := nlhe.DrawEdge{Cards: dealt}
			state = state.Apply(draw).(*nlhe.State)
			history = append(history, draw)
			human.Notify(player.Event{Kind: player.Board, Board: state.Underlying().Board, Street: state.Underlying().Street})

		case cfr.Choice:
			var edge game.Edge
			var action game.Action
			if actor == botSeat {
				edge = decideBotEdge(rng, blueprint, enc, strategy, root, history, state, botSeat, subgameCfg)
				action = state.Concretize(edge)
			} else {
				recall := player.PartialRecall{
					Seat:   actor,
					Hole:   state.Underlying().Seats[actor].Hole,
					Board:  state.Underlying().Board,
					Street: state.Underlying().Street,
					Pot:    state.Underlying().Pot,
					Legal:  state.Underlying().Legal(),
				}
				human.Notify(player.Event{Kind: player.Decision, Seat: actor})
				action = player.DecideWithClock(clock, human, recall, deadline)
				if !kindLegal(recall.Legal, action.Kind) {
					// An illegal request gets one re-prompt, then the
					// passive fallback.
					action = player.DecideWithClock(clock, human, recall, deadline)
					if !kindLegal(recall.Legal, action.Kind) {
						action = player.Fallback(recall)
					}
				}
				edge = game.Edgify(action, state.Underlying().Street, state.Underlying().Pot)
			}
			state = state.Apply(edge).(*nlhe.State)
			history = append(history, edge)
			human.Notify(player.Event{Kind: player.Action, Seat: actor, Action: action})
		}
	}
}

// decideBotEdge picks the bot's next edge: a depth-limited subgame
// refinement of the frozen blueprint (internal/nlhe.Refine) when the config
// enables it, falling back to sampling the blueprint directly. root and
// history feed the refiner's posterior: the opponent's candidate secrets are
// weighted by blueprint external reach over the replayed hand.
func decideBotEdge(rng *rand.Rand, blueprint *cfr.Profile, enc *nlhe.Encoder, strategy *nlhe.Strategy, root *nlhe.State, history []cfr.Edge, state *nlhe.State, botSeat int, subgameCfg config.SubgameConfig) game.Edge {
	if subgameCfg.Iterations <= 0 || subgameCfg.Alts <= 0 {
		return strategy.Sample(state, rng.Float64())
	}

	solveCfg := subgame.SolveConfig{Iterations: subgameCfg.Iterations, MaxDepth: subgameCfg.MaxDepth}
	sp, info := nlhe.Refine(blueprint, enc, root, history, state, botSeat, subgameCfg.Alts, solveCfg, rng.Int63())
	policy := sp.Policy(info)

	edges := info.Choices()
	r := rng.Float64()
	var cum float64
	var last game.Edge
	for _, e := range edges {
		ge := e.(game.Edge)
		last = ge
		cum += policy[e]
		if r < cum {
			return ge
		}
	}
	return last
}

// consolePlayer is a terminal Player: Notify prints a line, Decide reads one
// line of input naming an action kind (and amount for raise).
type consolePlayer struct {
	in *bufio.Scanner
}

func (c *consolePlayer) Notify(e player.Event) {
	switch e.Kind {
	case player.HandStart:
		fmt.Println("-- new hand --")
	case player.HoleCards:
		fmt.Printf("your hole cards: %s\n", e.Hole)
	case player.Board:
		fmt.Printf("board: %s\n", e.Board)
	case player.Action:
		fmt.Printf("seat %d: %s\n", e.Seat, e.Action)
	case player.HandEnd:
		fmt.Printf("-- hand over, your payout: %d --\n", e.Payout)
	}
}

func (c *consolePlayer) Decide(ctx context.Context, recall player.PartialRecall) (game.Action, error) {
	for {
		select {
		case <-ctx.Done():
			return game.Action{}, ctx.Err()
		default:
		}
		fmt.Printf("pot %d, legal: %s\n> ", recall.Pot, formatLegal(recall.Legal))
		if !c.in.Scan() {
			return game.Action{}, fmt.Errorf("play: no input")
		}
		a, err := parseAction(strings.TrimSpace(c.in.Text()), recall.Legal)
		if err != nil {
			fmt.Println(err)
			continue
		}
		return a, nil
	}
}

func kindLegal(legal []game.Action, kind game.ActionKind) bool {
	for _, a := range legal {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

func formatLegal(legal []game.Action) string {
	parts := make([]string, len(legal))
	for i, a := range legal {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

func parseAction(line string, legal []game.Action) (game.Action, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return game.Action{}, fmt.Errorf("play: empty input")
	}
	kind := strings.ToLower(fields[0])
	for _, a := range legal {
		switch kind {
		case "fold":
			if a.Kind == game.Fold {
				return a, nil
			}
		case "check":
			if a.Kind == game.Check {
				return a, nil
			}
		case "call":
			if a.Kind == game.Call {
				return a, nil
			}
		case "shove", "allin":
			if a.Kind == game.Shove {
				return a, nil
			}
		case "raise":
			if a.Kind == game.Raise {
				if len(fields) > 1 {
					if amt, err := strconv.Atoi(fields[1]); err == nil {
						return game.Action{Kind: game.Raise, Amount: amt}, nil
					}
				}
				return a, nil
			}
		}
	}
	return game.Action{}, fmt.Errorf("play: %q is not a legal action", line)
}
