package model

import (
	"strconv"
	"strings"
)

// Action is an operator choice offered by the transport; the value doubles as callback data.
type Action string

const (
	ActionPublish        Action = "publish"
	ActionRevise         Action = "revise"
	ActionStyleStrict    Action = "style_strict"
	ActionStyleIronic    Action = "style_ironic"
	ActionStyleShort     Action = "style_short"
	ActionStyleEmotional Action = "style_emotional"
	ActionCustom         Action = "custom"
)

const styleActionPrefix = "style_"

func StyleAction(st Style) Action { return Action(styleActionPrefix + string(st)) }

// StyleOf reports the style carried by a style_* action.
func (a Action) StyleOf() (Style, bool) {
	if len(a) <= len(styleActionPrefix) || string(a[:len(styleActionPrefix)]) != styleActionPrefix {
		return StyleNone, false
	}
	return ParseStyle(string(a[len(styleActionPrefix):]))
}

// ActionsFor returns the choices available to the operator in the given mode.
func ActionsFor(m Mode) []Action {
	switch m {
	case ModeDrafted:
		return []Action{ActionPublish, ActionRevise}
	case ModeAwaitingStyle:
		out := make([]Action, 0, len(Styles)+1)
		for _, st := range Styles {
			out = append(out, StyleAction(st))
		}
		return append(out, ActionCustom)
	default:
		return nil
	}
}

// Callback encodes the action for a button under draft number seq as "<action>:<seq>".
// A zero seq leaves the action untagged.
func (a Action) Callback(seq int) string {
	if seq <= 0 {
		return string(a)
	}
	return string(a) + ":" + strconv.Itoa(seq)
}

// ParseCallback splits button data into the action and the draft number it was issued for.
// The number is 0 for untagged data.
func ParseCallback(data string) (Action, int) {
	data = strings.TrimSpace(data)
	i := strings.LastIndexByte(data, ':')
	if i < 0 {
		return Action(data), 0
	}
	seq, err := strconv.Atoi(data[i+1:])
	if err != nil || seq <= 0 {
		return Action(data), 0
	}
	return Action(data[:i]), seq
}
