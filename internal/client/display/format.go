package display

import (
	"encoding/json"
	"fmt"
	"strings"

	"gobblet/internal/core"
)

// FormatGames lists games as "k: date, p1 vs p2[, winner: X]", numbered from 1.
func FormatGames(games []core.GameSummary) string {
	var sb strings.Builder
	for i, g := range games {
		k := i + 1
		pad := " "
		if k >= 10 {
			pad = ""
		}
		p1, p2 := "", ""
		if len(g.Players) > 0 {
			p1 = g.Players[0]
		}
		if len(g.Players) > 1 {
			p2 = g.Players[1]
		}
		fmt.Fprintf(&sb, "%d%s: %s, %s vs %s", k, pad, g.Date, p1, p2)
		if g.Winner != nil {
			fmt.Fprintf(&sb, ", winner: %s", *g.Winner)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// PrettyPrintJSON prints formatted JSON
func PrettyPrintJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%sError formatting JSON: %s%s\n", Red, err.Error(), Reset)
		return
	}
	fmt.Println(string(data))
}
