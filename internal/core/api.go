package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Wire snapshot types

// Pair is a wire piece, [owner, size]. An empty pair is an empty reserve slot.
type Pair []int

// CellSnapshot is a cell stack, bottom first.
type CellSnapshot []Pair

// BoardSnapshot holds 4 rows of 4 cells, top visual row first.
type BoardSnapshot [][]CellSnapshot

type PlayerSnapshot struct {
	Name     string `json:"name" validate:"required"`
	Reserves []Pair `json:"reserves" validate:"len=3"`
}

// GameSnapshot is the complete authoritative state of one game.
type GameSnapshot struct {
	ID      string           `json:"id"`
	Board   BoardSnapshot    `json:"board" validate:"len=4,dive,len=4"`
	Players []PlayerSnapshot `json:"players" validate:"len=2,dive"`
}

// Validate checks the snapshot shape. Piece values are checked when the
// snapshot is turned into a board.
func (s *GameSnapshot) Validate() error {
	return validateStruct(s)
}

// Request types

type MoveRequest struct {
	ID          string `json:"id" validate:"required"`
	Origin      Origin `json:"origin"`
	Destination Coord  `json:"destination"`
}

func (r *MoveRequest) Move() Move {
	return Move{Origin: r.Origin, Destination: r.Destination}
}

// Response types

// GameResponse is a snapshot, or a terminal answer when Winner is set.
type GameResponse struct {
	GameSnapshot
	Winner string `json:"winner,omitempty"`
}

func (r *GameResponse) Terminal() bool {
	return r.Winner != ""
}

// GameSummary is one entry of a player's game list.
type GameSummary struct {
	ID      string   `json:"id"`
	Date    string   `json:"date"`
	Players []string `json:"players"`
	Winner  *string  `json:"winner"`
}

type GameListResponse struct {
	Games []GameSummary `json:"games"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ValidateRequest runs struct tag validation on a decoded request.
func ValidateRequest(v any) error {
	return validateStruct(v)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Err: err}
	}
	var details strings.Builder
	for _, fe := range verrs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch fe.Tag() {
		case "required":
			details.WriteString(fmt.Sprintf("%s is required", fe.Namespace()))
		case "len":
			details.WriteString(fmt.Sprintf("%s must have %s entries", fe.Namespace(), fe.Param()))
		case "min":
			details.WriteString(fmt.Sprintf("%s must be at least %s", fe.Namespace(), fe.Param()))
		case "max":
			details.WriteString(fmt.Sprintf("%s must be at most %s", fe.Namespace(), fe.Param()))
		default:
			details.WriteString(fmt.Sprintf("%s failed %s validation", fe.Namespace(), fe.Tag()))
		}
	}
	return &ValidationError{Field: verrs[0].Namespace(), Err: errors.New(details.String())}
}
