// Package cli implements the gobbletd db subcommands.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"

	"gobblet/internal/server/service"
	"gobblet/internal/server/storage"

	"golang.org/x/term"
)

// Run is the entry point for the db mini-app.
func Run(args []string) error {
	return run(args, os.Stdout)
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, player")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:], out)
	case "delete":
		return runDelete(args[1:], out)
	case "query":
		return runQuery(args[1:], out)
	case "player", "user":
		if len(args) < 2 {
			return fmt.Errorf("player subcommand required: add, delete, list")
		}
		return runPlayer(args[1], args[2:], out)
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// openStore parses the common -path flag set and opens the database.
func openStore(fs *flag.FlagSet, args []string) (*storage.Store, error) {
	path := fs.String("path", "", "Database file path (required)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *path == "" {
		return nil, fmt.Errorf("database path required")
	}
	store, err := storage.NewStore(*path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func runInit(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	store, err := openStore(fs, args)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	fmt.Fprintf(out, "Database initialized at: %s\n", fs.Lookup("path").Value)
	return nil
}

func runDelete(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	store, err := openStore(fs, args)
	if err != nil {
		return err
	}
	if err := store.DeleteDB(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Database deleted: %s\n", fs.Lookup("path").Value)
	return nil
}

func runQuery(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	gameID := fs.String("game", "", "Game ID to filter (optional, * for all)")
	player := fs.String("player", "", "Player name to filter (optional, * for all)")
	moves := fs.Bool("moves", false, "List the moves of each game")
	store, err := openStore(fs, args)
	if err != nil {
		return err
	}
	defer store.Close()

	games, err := store.QueryGames(*gameID, *player)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(games) == 0 {
		fmt.Fprintln(out, "No games found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tPlayer\tOpponent\tStarted\tWinner")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, g := range games {
		winner := "-"
		if g.Winner != nil {
			winner = *g.Winner
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			g.GameID, g.PlayerName, g.Opponent,
			g.StartedAt.Format("2006-01-02 15:04:05"), winner,
		)
		if !*moves {
			continue
		}
		records, err := store.QueryMoves(g.GameID)
		if err != nil {
			return fmt.Errorf("query moves: %w", err)
		}
		for _, m := range records {
			fmt.Fprintf(w, "\t%3d. player %d\t%s -> %s\t\t\n", m.Ply, m.Mover, m.Origin, m.Destination)
		}
	}
	w.Flush()

	fmt.Fprintf(out, "\nFound %d game(s)\n", len(games))
	return nil
}

func runPlayer(subcommand string, args []string, out io.Writer) error {
	switch subcommand {
	case "add":
		return runPlayerAdd(args, out)
	case "delete":
		return runPlayerDelete(args, out)
	case "list":
		return runPlayerList(args, out)
	default:
		return fmt.Errorf("unknown player subcommand: %s", subcommand)
	}
}

func runPlayerAdd(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("player add", flag.ContinueOnError)
	name := fs.String("name", "", "Player name (required)")
	secret := fs.String("secret", "", "Secret (optional, see -interactive)")
	hash := fs.String("hash", "", "Pre-computed PHC secret hash (optional)")
	interactive := fs.Bool("interactive", false, "Interactive secret prompt")
	store, err := openStore(fs, args)
	if err != nil {
		return err
	}
	svc := service.New(store)
	defer svc.Shutdown()

	if *name == "" {
		return fmt.Errorf("player name required")
	}

	switch {
	case *interactive:
		if *secret != "" || *hash != "" {
			return fmt.Errorf("cannot use -interactive with -secret or -hash")
		}
		fmt.Fprint(out, "Enter secret: ")
		b, rerr := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(out)
		if rerr != nil {
			return fmt.Errorf("failed to read secret: %w", rerr)
		}
		err = svc.RegisterPlayer(*name, string(b))
	case *hash != "":
		if *secret != "" {
			return fmt.Errorf("cannot specify both -secret and -hash")
		}
		err = svc.ImportPlayer(*name, *hash)
	case *secret != "":
		err = svc.RegisterPlayer(*name, *secret)
	default:
		return fmt.Errorf("secret required: use -secret, -hash, or -interactive")
	}
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	fmt.Fprintf(out, "Player created: %s\n", *name)
	return nil
}

func runPlayerDelete(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("player delete", flag.ContinueOnError)
	name := fs.String("name", "", "Player name (required)")
	store, err := openStore(fs, args)
	if err != nil {
		return err
	}
	defer store.Close()

	if *name == "" {
		return fmt.Errorf("player name required")
	}
	if err := store.DeletePlayer(*name); err != nil {
		return err
	}
	fmt.Fprintf(out, "Player deleted: %s\n", *name)
	return nil
}

func runPlayerList(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("player list", flag.ContinueOnError)
	store, err := openStore(fs, args)
	if err != nil {
		return err
	}
	defer store.Close()

	players, err := store.ListPlayers()
	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}
	if len(players) == 0 {
		fmt.Fprintln(out, "No players found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Name\tCreated\tLast Seen")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, p := range players {
		lastSeen := "never"
		if p.LastSeenAt != nil {
			lastSeen = p.LastSeenAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.CreatedAt.Format("2006-01-02 15:04"), lastSeen)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal players: %d\n", len(players))
	return nil
}
