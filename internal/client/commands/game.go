package commands

import (
	"errors"
	"fmt"
	"strconv"

	"gobblet/internal/agent"
	"gobblet/internal/client/display"
	"gobblet/internal/client/savefile"
	"gobblet/internal/core"
	"gobblet/internal/game"
	"gobblet/internal/session"

	"github.com/rs/zerolog/log"
)

var errNoGame = errors.New("no current game, use 'new' or 'resume'")

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Start a new game",
		Usage:       "new",
		Group:       groupGame,
		Handler:     newGameHandler,
	})

	r.Register(&Command{
		Name:        "games",
		ShortName:   "g",
		Description: "List saved games known to the server",
		Usage:       "games [all]",
		Group:       groupGame,
		Handler:     listGamesHandler,
	})

	r.Register(&Command{
		Name:        "resume",
		ShortName:   "r",
		Description: "Continue a saved game",
		Usage:       "resume <number|gameId>",
		Group:       groupGame,
		Handler:     resumeHandler,
	})

	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Play a move",
		Usage:       "move <slot|x,y> <x,y>",
		Group:       groupGame,
		Handler:     moveHandler,
	})

	r.Register(&Command{
		Name:        "auto",
		ShortName:   "a",
		Description: "Let the automated player move",
		Usage:       "auto [all]",
		Group:       groupGame,
		Handler:     autoHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "s",
		Description: "Show board and reserves",
		Usage:       "show",
		Group:       groupGame,
		Handler:     showBoardHandler,
	})

	r.Register(&Command{
		Name:        "state",
		Description: "Show raw game JSON",
		Usage:       "state",
		Group:       groupGame,
		Handler:     gameStateHandler,
	})

	r.Register(&Command{
		Name:        "stop",
		Description: "Save the current game and leave it",
		Usage:       "stop",
		Group:       groupGame,
		Handler:     stopHandler,
	})
}

// StartGame opens a new game on the server and makes it current.
func StartGame(env *Env) error {
	resp, err := env.Client.StartGame(env.Ctx)
	if err != nil {
		return err
	}
	g, err := session.New(resp, env.Client)
	if err != nil {
		return err
	}
	env.Game = g
	fmt.Printf("%sGame created: %s%s\n", display.Green, g.ID(), display.Reset)
	return nil
}

// SavedGames lists the server's games that also have a local save.
func SavedGames(env *Env) ([]core.GameSummary, error) {
	games, err := env.Client.ListGames(env.Ctx)
	if err != nil {
		return nil, err
	}
	ids, err := savefile.IDs(env.SaveDir)
	if err != nil {
		return nil, err
	}
	return savefile.Filter(games, ids), nil
}

// ResumeGame fetches game id from the server and makes it current. The
// server state wins over the local save.
func ResumeGame(env *Env, id string) error {
	resp, err := env.Client.GetGame(env.Ctx, id)
	if err != nil {
		return err
	}
	g, err := session.New(resp, env.Client)
	if err != nil {
		return err
	}

	if saved, err := savefile.Load(env.SaveDir, id); err == nil {
		if local, err := game.FromSnapshot(saved); err != nil || !local.Equal(g.Mirror()) {
			log.Warn().Str("game", id).Msg("save file is out of date, using server state")
		}
	}

	env.Game = g
	fmt.Printf("%sResumed game: %s%s\n", display.Green, id, display.Reset)
	if g.State() == session.GameOver {
		fmt.Printf("%sGame already over, winner: %s%s\n", display.Yellow, g.Winner(), display.Reset)
	}
	return nil
}

func newGameHandler(env *Env, _ []string) error {
	if err := StartGame(env); err != nil {
		return err
	}
	display.RenderGame(env.Game.Mirror())
	return nil
}

func listGamesHandler(env *Env, args []string) error {
	var (
		games []core.GameSummary
		err   error
	)
	if len(args) > 0 && args[0] == "all" {
		games, err = env.Client.ListGames(env.Ctx)
	} else {
		games, err = SavedGames(env)
	}
	if err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Println("No games found")
		return nil
	}
	fmt.Print(display.FormatGames(games))
	return nil
}

func resumeHandler(env *Env, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: resume <number|gameId>")
	}
	id := args[0]
	if k, err := strconv.Atoi(id); err == nil {
		games, err := SavedGames(env)
		if err != nil {
			return err
		}
		if k < 1 || k > len(games) {
			return fmt.Errorf("choose a number from 1 to %d", len(games))
		}
		id = games[k-1].ID
	}
	if err := ResumeGame(env, id); err != nil {
		return err
	}
	display.RenderGame(env.Game.Mirror())
	return nil
}

func moveHandler(env *Env, args []string) error {
	if env.Game == nil {
		return errNoGame
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: move <slot|x,y> <x,y>")
	}
	m, err := core.ParseMove(args[0], args[1])
	if err != nil {
		return err
	}
	if err := env.Game.Submit(env.Ctx, m); err != nil {
		return err
	}
	return afterRound(env)
}

func autoHandler(env *Env, args []string) error {
	if env.Game == nil {
		return errNoGame
	}
	if len(args) > 0 && args[0] == "all" {
		err := env.Game.Run(env.Ctx, agent.Mover{}, func(m core.Move) {
			fmt.Printf("%sPlayed %s%s\n", display.Magenta, m, display.Reset)
		})
		if err != nil {
			return err
		}
		return afterRound(env)
	}

	m, err := env.Game.Step(env.Ctx, agent.Mover{})
	if err != nil {
		return err
	}
	fmt.Printf("%sPlayed %s%s\n", display.Magenta, m, display.Reset)
	return afterRound(env)
}

// afterRound shows the position and closes out a finished game.
func afterRound(env *Env) error {
	g := env.Game
	if d := g.LastDelta(); d != nil && g.State() != session.GameOver {
		fmt.Printf("%sOpponent: %s%s\n", display.Cyan, d, display.Reset)
	}
	display.RenderGame(g.Mirror())
	if g.State() == session.GameOver {
		ReportOutcome(g)
		if err := savefile.Remove(env.SaveDir, g.ID()); err != nil {
			log.Warn().Err(err).Msg("failed to remove save file")
		}
		env.Game = nil
	}
	return nil
}

// ReportOutcome prints how a finished game ended.
func ReportOutcome(g *session.Session) {
	switch {
	case g.Winner() != "":
		fmt.Printf("%sWinner: %s%s\n", display.Green, g.Winner(), display.Reset)
	default:
		fmt.Printf("%sGame over: %s%s\n", display.Green, g.Outcome().Result, display.Reset)
	}
}

func showBoardHandler(env *Env, _ []string) error {
	if env.Game == nil {
		return errNoGame
	}
	fmt.Printf("%sGame: %s (%s)%s\n", display.Cyan, env.Game.ID(), env.Game.State(), display.Reset)
	display.RenderGame(env.Game.Mirror())
	return nil
}

func gameStateHandler(env *Env, _ []string) error {
	if env.Game == nil {
		return errNoGame
	}
	display.PrettyPrintJSON(env.Game.Snapshot())
	return nil
}

func stopHandler(env *Env, _ []string) error {
	if env.Game == nil {
		return errNoGame
	}
	if err := savefile.Save(env.SaveDir, env.Game.Snapshot()); err != nil {
		return err
	}
	fmt.Printf("%sGame %s saved%s\n", display.Green, env.Game.ID(), display.Reset)
	env.Game = nil
	return nil
}
