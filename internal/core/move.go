package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BoardSize is the width and height of the grid.
const BoardSize = 4

// Coord is a logical board coordinate. Row 0 is the bottom row.
type Coord struct {
	Col int `validate:"min=0,max=3"`
	Row int `validate:"min=0,max=3"`
}

func (c Coord) Valid() bool {
	return c.Col >= 0 && c.Col < BoardSize && c.Row >= 0 && c.Row < BoardSize
}

func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.Col, c.Row)
}

// MarshalJSON encodes the coordinate as [col,row].
func (c Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.Col, c.Row})
}

func (c *Coord) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coordinate must be [col,row]: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("coordinate must have 2 entries, got %d", len(pair))
	}
	c.Col, c.Row = pair[0], pair[1]
	return nil
}

// Origin is where a moved piece comes from: a reserve slot or a board cell.
type Origin struct {
	Slot int    `validate:"min=0,max=2"`
	Cell *Coord `validate:"omitempty"`
}

func FromReserve(slot int) Origin { return Origin{Slot: slot} }

func FromBoard(c Coord) Origin { return Origin{Cell: &c} }

func (o Origin) IsReserve() bool { return o.Cell == nil }

func (o Origin) String() string {
	if o.IsReserve() {
		return strconv.Itoa(o.Slot)
	}
	return o.Cell.String()
}

// MarshalJSON encodes a reserve origin as its slot index and a board origin as [col,row].
func (o Origin) MarshalJSON() ([]byte, error) {
	if o.IsReserve() {
		return json.Marshal(o.Slot)
	}
	return json.Marshal(*o.Cell)
}

func (o *Origin) UnmarshalJSON(data []byte) error {
	var slot int
	if err := json.Unmarshal(data, &slot); err == nil {
		*o = FromReserve(slot)
		return nil
	}
	var c Coord
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("origin must be a slot index or [col,row]")
	}
	*o = FromBoard(c)
	return nil
}

// Move takes the piece at Origin to Destination.
type Move struct {
	Origin      Origin
	Destination Coord
}

func (m Move) String() string {
	return m.Origin.String() + " -> " + m.Destination.String()
}

// ParseCoord reads "x,y" as a logical coordinate.
func ParseCoord(s string) (Coord, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Coord{}, &ValidationError{Field: "coordinate", Err: fmt.Errorf("%q is not x,y", s)}
	}
	col, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	row, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return Coord{}, &ValidationError{Field: "coordinate", Err: fmt.Errorf("%q is not two integers", s)}
	}
	c := Coord{Col: col, Row: row}
	if !c.Valid() {
		return Coord{}, &ValidationError{Field: "coordinate", Err: fmt.Errorf("%w: %s", ErrOutOfBounds, c)}
	}
	return c, nil
}

// ParseMove reads a human move: origin is a slot number or "x,y", destination is "x,y".
func ParseMove(origin, destination string) (Move, error) {
	var m Move
	origin = strings.TrimSpace(origin)
	if !strings.Contains(origin, ",") {
		slot, err := strconv.Atoi(origin)
		if err != nil {
			return Move{}, &ValidationError{Field: "origin", Err: fmt.Errorf("%q is neither a slot nor x,y", origin)}
		}
		if slot < 0 || slot >= SlotCount {
			return Move{}, &ValidationError{Field: "origin", Err: fmt.Errorf("%w: %d", ErrInvalidSlot, slot)}
		}
		m.Origin = FromReserve(slot)
	} else {
		c, err := ParseCoord(origin)
		if err != nil {
			return Move{}, err
		}
		m.Origin = FromBoard(c)
	}
	dest, err := ParseCoord(destination)
	if err != nil {
		return Move{}, err
	}
	m.Destination = dest
	return m, nil
}
