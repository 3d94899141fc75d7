package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gobblet/internal/client/api"
	"gobblet/internal/client/display"
	"gobblet/internal/session"
)

// ErrExit is returned by Execute when the user asked to leave.
var ErrExit = errors.New("exit requested")

// Env is the client state shared by command handlers.
type Env struct {
	Ctx     context.Context
	Client  *api.Client
	Game    *session.Session
	SaveDir string
	Verbose bool
}

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Group       string
	Handler     func(*Env, []string) error
}

// Registry manages command registration and execution
type Registry struct {
	env      *Env
	commands map[string]*Command
}

func NewRegistry(env *Env) *Registry {
	r := &Registry{
		env:      env,
		commands: make(map[string]*Command),
	}

	r.registerGameCommands()
	r.registerPlayerCommands()
	r.registerUtilCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Group:       groupUtil,
		Handler:     r.helpHandler,
	})

	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Group:       groupUtil,
		Handler:     func(*Env, []string) error { return ErrExit },
	})

	return r
}

const (
	groupGame   = "Game Commands"
	groupPlayer = "Player Commands"
	groupUtil   = "Utility Commands"
)

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

// Execute runs one input line. Handler errors are printed; only ErrExit is
// returned.
func (r *Registry) Execute(input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmdName := parts[0]
	args := parts[1:]

	cmd, exists := r.commands[cmdName]
	if !exists {
		fmt.Printf("%sUnknown command: %s%s\n", display.Red, cmdName, display.Reset)
		fmt.Printf("Type 'help' for available commands\n")
		return nil
	}

	r.env.Client.SetVerbose(r.env.Verbose)

	err := cmd.Handler(r.env, args)
	if errors.Is(err, ErrExit) {
		return err
	}
	if err != nil {
		fmt.Printf("%sError: %s%s\n", display.Red, err.Error(), display.Reset)
	}
	return nil
}

func (r *Registry) helpHandler(_ *Env, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Printf("\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			fmt.Printf("Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Printf("Usage: %s\n", cmd.Usage)
		return nil
	}

	fmt.Printf("\n%sAvailable Commands:%s\n\n", display.Cyan, display.Reset)

	groups := make(map[string][]*Command)
	for name, cmd := range r.commands {
		if name != cmd.Name {
			continue
		}
		groups[cmd.Group] = append(groups[cmd.Group], cmd)
	}

	for i, title := range []string{groupGame, groupPlayer, groupUtil} {
		if i > 0 {
			fmt.Println()
		}
		cmds := groups[title]
		sort.Slice(cmds, func(a, b int) bool { return cmds[a].Name < cmds[b].Name })
		fmt.Printf("%s%s:%s\n", display.Yellow, title, display.Reset)
		for _, cmd := range cmds {
			shortPart := ""
			if cmd.ShortName != "" {
				shortPart = fmt.Sprintf("[%s%s%s] ", display.Cyan, cmd.ShortName, display.Reset)
			}
			fmt.Printf("  %s%-10s %s\n", shortPart, cmd.Name, cmd.Description)
		}
	}

	fmt.Printf("\nType 'help <command>' for detailed usage\n")
	fmt.Printf("Add '-v' to any command for verbose output\n")
	return nil
}
