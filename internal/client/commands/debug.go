package commands

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"gobblet/internal/client/display"
)

func (r *Registry) registerUtilCommands() {
	r.Register(&Command{
		Name:        "health",
		ShortName:   ".",
		Description: "Check server health",
		Usage:       "health",
		Group:       groupUtil,
		Handler:     healthHandler,
	})

	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Show or set the API base URL",
		Usage:       "url [base-url]",
		Group:       groupUtil,
		Handler:     urlHandler,
	})

	r.Register(&Command{
		Name:        "clear",
		ShortName:   "-",
		Description: "Clear screen",
		Usage:       "clear",
		Group:       groupUtil,
		Handler:     clearHandler,
	})
}

func healthHandler(env *Env, _ []string) error {
	resp, err := env.Client.Health(env.Ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%sServer Health:%s\n", display.Cyan, display.Reset)
	fmt.Printf("  Status:  %s\n", resp.Status)
	t := time.Unix(resp.Time, 0)
	fmt.Printf("  Time:    %s\n", t.Format("2006-01-02 15:04:05"))
	if resp.Storage != "" {
		fmt.Printf("  Storage: %s\n", resp.Storage)
	}
	return nil
}

func urlHandler(env *Env, args []string) error {
	if len(args) == 0 {
		fmt.Printf("Current API URL: %s\n", env.Client.BaseURL)
		return nil
	}

	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	if env.Game != nil {
		return fmt.Errorf("stop the current game before switching servers")
	}
	env.Client.BaseURL = strings.TrimRight(url, "/")

	fmt.Printf("%sAPI URL set to: %s%s\n", display.Cyan, env.Client.BaseURL, display.Reset)
	return nil
}

func clearHandler(_ *Env, _ []string) error {
	cmd := exec.Command("clear")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}
