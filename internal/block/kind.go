package block

import (
	"fmt"
	"strings"
)

// ID identifies an entity in a Registry. The zero ID is never assigned.
type ID int

// NoID is the absent entity
const NoID ID = 0

// Kind is the closed set of block variants
type Kind int

const (
	// KindEmptySpace as a light form means the block has no light counterpart
	KindEmptySpace Kind = iota
	// KindRepeat as a light form means the same block serves both worlds
	KindRepeat
	KindWall
	KindSwitch
	KindPressurePlate
	KindMovableDoor
	KindAppearDoor
	KindDisappearDoor
	KindNPC
	KindNextLevel
)

var kindNames = map[Kind]string{
	KindEmptySpace:    "empty_space",
	KindRepeat:        "repeat",
	KindWall:          "wall",
	KindSwitch:        "switch",
	KindPressurePlate: "pressure_plate",
	KindMovableDoor:   "movable_door",
	KindAppearDoor:    "appear_door",
	KindDisappearDoor: "disappear_door",
	KindNPC:           "npc",
	KindNextLevel:     "next_level",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind converts a level-file name to a Kind
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "shadow_wall":
		return KindWall, nil
	case "", "empty", "none":
		return KindEmptySpace, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindEmptySpace, fmt.Errorf("unknown block kind %q", s)
}

// SwitchMode selects what a switch or pressure plate does to its linked block
type SwitchMode int

const (
	ToggleShine SwitchMode = iota
	ToggleMovement
	ToggleAppear
	ToggleDisappear
)

func (m SwitchMode) String() string {
	switch m {
	case ToggleShine:
		return "toggle_shine"
	case ToggleMovement:
		return "toggle_movement"
	case ToggleAppear:
		return "toggle_appear"
	case ToggleDisappear:
		return "toggle_disappear"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseSwitchMode converts a level-file name to a SwitchMode.
// An empty name selects ToggleShine.
func ParseSwitchMode(s string) (SwitchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "toggle_shine":
		return ToggleShine, nil
	case "toggle_movement":
		return ToggleMovement, nil
	case "toggle_appear":
		return ToggleAppear, nil
	case "toggle_disappear":
		return ToggleDisappear, nil
	default:
		return ToggleShine, fmt.Errorf("unknown switch mode %q", s)
	}
}
