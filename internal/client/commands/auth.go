package commands

import (
	"fmt"
	"syscall"

	"gobblet/internal/client/display"

	"golang.org/x/term"
)

func (r *Registry) registerPlayerCommands() {
	r.Register(&Command{
		Name:        "login",
		ShortName:   "l",
		Description: "Set the player name and secret",
		Usage:       "login <player>",
		Group:       groupPlayer,
		Handler:     loginHandler,
	})

	r.Register(&Command{
		Name:        "whoami",
		ShortName:   "i",
		Description: "Show the current player",
		Usage:       "whoami",
		Group:       groupPlayer,
		Handler:     whoamiHandler,
	})
}

// ReadSecret prompts for a secret without echoing it.
func ReadSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

func loginHandler(env *Env, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: login <player>")
	}
	secret, err := ReadSecret("Secret: ")
	if err != nil {
		return err
	}
	env.Client.Player = args[0]
	env.Client.Secret = secret

	if _, err := env.Client.ListGames(env.Ctx); err != nil {
		return err
	}
	fmt.Printf("%sLogged in as %s%s\n", display.Green, args[0], display.Reset)
	return nil
}

func whoamiHandler(env *Env, _ []string) error {
	if env.Client.Player == "" {
		fmt.Printf("%sNot logged in%s\n", display.Yellow, display.Reset)
		return nil
	}
	fmt.Printf("%sPlayer:%s %s\n", display.Cyan, display.Reset, env.Client.Player)
	if env.Game != nil {
		fmt.Printf("%sGame:%s   %s\n", display.Cyan, display.Reset, env.Game.ID())
	}
	return nil
}
