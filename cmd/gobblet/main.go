// Command gobblet plays Gobblet against the game server, either from an
// interactive prompt or automatically.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gobblet/internal/agent"
	"gobblet/internal/client/api"
	"gobblet/internal/client/commands"
	"gobblet/internal/client/display"
	"gobblet/internal/client/savefile"
	"gobblet/internal/core"
	"gobblet/internal/session"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const secretEnv = "GOBBLET_SECRET"

var errUsage = errors.New("usage")

func main() {
	err := run(os.Args[1:], nil)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
}

// run plays one game. It returns instead of exiting so the terminal is
// restored by the deferred readline close. A nil stdin reads the process
// input.
func run(args []string, stdin io.ReadCloser) error {
	fs := flag.NewFlagSet("gobblet", flag.ContinueOnError)
	var (
		list    = fs.Bool("l", false, "List saved games and pick one to resume")
		auto    = fs.Bool("a", false, "Automatic mode: the agent plays until the game ends")
		baseURL = fs.String("url", api.DefaultBaseURL, "Server API base URL")
		secret  = fs.String("secret", "", "Player secret (default $"+secretEnv+", else prompt)")
		saveDir = fs.String("save-dir", defaultSaveDir(), "Directory for saved games")
		verbose = fs.Bool("v", false, "Log requests and responses")
	)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: gobblet [flags] PLAYER\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}
	player := fs.Arg(0)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *secret == "" {
		*secret = os.Getenv(secretEnv)
	}
	if *secret == "" {
		s, err := commands.ReadSecret("Secret for " + player + ": ")
		if err != nil {
			return err
		}
		*secret = s
	}

	client := api.New(*baseURL, player, *secret)
	client.SetVerbose(*verbose)
	env := &commands.Env{
		Ctx:     context.Background(),
		Client:  client,
		SaveDir: *saveDir,
		Verbose: *verbose,
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("gobblet"),
		HistoryFile:     ".gobblet_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           stdin,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	if err := openGame(env, rl, *list); err != nil {
		return err
	}

	if *auto {
		// An interrupt stops the agent between moves and saves the game.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		env.Ctx = ctx
		return autoPlay(env)
	}
	repl(env, rl)
	return nil
}

// openGame resumes a saved game when asked to and one is picked, else it
// starts a new one.
func openGame(env *commands.Env, rl *readline.Instance, list bool) error {
	if !list {
		return commands.StartGame(env)
	}
	games, err := commands.SavedGames(env)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Println("No saved games, starting a new one")
		return commands.StartGame(env)
	}

	fmt.Print(display.FormatGames(games))
	rl.SetPrompt(display.Prompt("game number (empty for a new game)"))
	line, err := rl.Readline()
	if err != nil {
		return err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return commands.StartGame(env)
	}
	k, err := strconv.Atoi(line)
	if err != nil || k < 1 || k > len(games) {
		return fmt.Errorf("no game numbered %q", line)
	}
	return commands.ResumeGame(env, games[k-1].ID)
}

// autoPlay lets the agent play to the end. An interrupted game is saved.
func autoPlay(env *commands.Env) error {
	g := env.Game
	display.RenderGame(g.Mirror())
	err := g.Run(env.Ctx, agent.Mover{}, func(m core.Move) {
		fmt.Printf("%sPlayed %s%s\n", display.Magenta, m, display.Reset)
		display.RenderGame(g.Mirror())
	})
	if env.Ctx.Err() != nil {
		if g.State() != session.GameOver {
			if err := savefile.Save(env.SaveDir, g.Snapshot()); err != nil {
				return err
			}
			fmt.Printf("%sGame %s saved%s\n", display.Green, g.ID(), display.Reset)
		}
		return nil
	}
	if err != nil {
		return err
	}
	commands.ReportOutcome(g)
	if err := savefile.Remove(env.SaveDir, g.ID()); err != nil {
		log.Warn().Err(err).Msg("failed to remove save file")
	}
	return nil
}

func repl(env *commands.Env, rl *readline.Instance) {
	fmt.Printf("%sGobblet%s  %s\n", display.Cyan, display.Reset, env.Client.BaseURL)
	fmt.Printf("Type 'help' for commands\n\n")
	if env.Game != nil {
		display.RenderGame(env.Game.Mirror())
	}

	registry := commands.NewRegistry(env)
	for {
		rl.SetPrompt(buildPrompt(env))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		env.Verbose = strings.HasSuffix(line, " -v")
		line = strings.TrimSuffix(line, " -v")

		if errors.Is(registry.Execute(line), commands.ErrExit) {
			break
		}
	}

	// Leaving mid-game keeps it resumable.
	if env.Game != nil && env.Game.State() != session.GameOver {
		if err := savefile.Save(env.SaveDir, env.Game.Snapshot()); err != nil {
			log.Warn().Err(err).Msg("failed to save game")
		} else {
			fmt.Printf("%sGame %s saved%s\n", display.Green, env.Game.ID(), display.Reset)
		}
	}
}

func buildPrompt(env *commands.Env) string {
	prompt := "gobblet " + display.Yellow + "[" + display.Magenta + env.Client.Player + display.Reset
	if g := env.Game; g != nil {
		id := g.ID()
		if len(id) > 8 {
			id = id[:8]
		}
		prompt += display.Yellow + " - " + display.White + id + display.Reset
		prompt += display.Yellow + "]" + display.Reset + " " + g.State().String()
	} else {
		prompt += display.Yellow + "]" + display.Reset
	}
	return display.Prompt(prompt)
}

func defaultSaveDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".gobblet"
	}
	return dir + string(os.PathSeparator) + "gobblet"
}
