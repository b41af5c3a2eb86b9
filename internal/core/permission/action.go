package permission

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ActionType is one of the fixed capabilities that can be granted on a module or page.
type ActionType string

const (
	ActionView      ActionType = "view"
	ActionCreate    ActionType = "create"
	ActionEdit      ActionType = "edit"
	ActionDelete    ActionType = "delete"
	ActionDuplicate ActionType = "duplicate"
	ActionApprove   ActionType = "approve"
	ActionPrint     ActionType = "print"
)

// Actions lists every action in declaration order. Projections such as
// ModuleActions.Allowed follow this order.
var Actions = []ActionType{
	ActionView,
	ActionCreate,
	ActionEdit,
	ActionDelete,
	ActionDuplicate,
	ActionApprove,
	ActionPrint,
}

// ActionLabels holds the display text for each action.
var ActionLabels = map[ActionType]string{
	ActionView:      "عرض",
	ActionCreate:    "إضافة",
	ActionEdit:      "تعديل",
	ActionDelete:    "حذف",
	ActionDuplicate: "نسخ",
	ActionApprove:   "اعتماد",
	ActionPrint:     "طباعة",
}

var (
	ErrInvalidAction  = errors.New("invalid action")
	ErrPartialActions = errors.New("actions must define every action exactly once")
)

func (a ActionType) IsValid() bool {
	switch a {
	case ActionView, ActionCreate, ActionEdit, ActionDelete, ActionDuplicate, ActionApprove, ActionPrint:
		return true
	}
	return false
}

func (a ActionType) Label() string {
	return ActionLabels[a]
}

func (a ActionType) String() string {
	return string(a)
}

// ParseAction converts user input into an ActionType.
func ParseAction(s string) (ActionType, error) {
	a := ActionType(strings.ToLower(strings.TrimSpace(s)))
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
	return a, nil
}

// ModuleActions maps every ActionType to a grant flag. Being a struct it is
// total over the action domain; there is no way to leave an action out.
type ModuleActions struct {
	View      bool `json:"view"`
	Create    bool `json:"create"`
	Edit      bool `json:"edit"`
	Delete    bool `json:"delete"`
	Duplicate bool `json:"duplicate"`
	Approve   bool `json:"approve"`
	Print     bool `json:"print"`
}

// DefaultActions returns actions with nothing granted.
func DefaultActions() ModuleActions {
	return ModuleActions{}
}

// FullActions returns actions with everything granted.
func FullActions() ModuleActions {
	return ModuleActions{
		View:      true,
		Create:    true,
		Edit:      true,
		Delete:    true,
		Duplicate: true,
		Approve:   true,
		Print:     true,
	}
}

// Has reports whether action is granted. Unknown actions are never granted.
func (m ModuleActions) Has(action ActionType) bool {
	switch action {
	case ActionView:
		return m.View
	case ActionCreate:
		return m.Create
	case ActionEdit:
		return m.Edit
	case ActionDelete:
		return m.Delete
	case ActionDuplicate:
		return m.Duplicate
	case ActionApprove:
		return m.Approve
	case ActionPrint:
		return m.Print
	}
	return false
}

// Set grants or revokes action. It returns false for an unknown action and
// leaves the receiver untouched.
func (m *ModuleActions) Set(action ActionType, granted bool) bool {
	switch action {
	case ActionView:
		m.View = granted
	case ActionCreate:
		m.Create = granted
	case ActionEdit:
		m.Edit = granted
	case ActionDelete:
		m.Delete = granted
	case ActionDuplicate:
		m.Duplicate = granted
	case ActionApprove:
		m.Approve = granted
	case ActionPrint:
		m.Print = granted
	default:
		return false
	}
	return true
}

// With returns a copy with action set to granted.
func (m ModuleActions) With(action ActionType, granted bool) ModuleActions {
	m.Set(action, granted)
	return m
}

// Count returns the number of granted actions.
func (m ModuleActions) Count() int {
	n := 0
	for _, a := range Actions {
		if m.Has(a) {
			n++
		}
	}
	return n
}

func (m ModuleActions) IsEmpty() bool {
	return m.Count() == 0
}

func (m ModuleActions) IsFull() bool {
	return m.Count() == len(Actions)
}

// Allowed returns the granted actions in declaration order.
func (m ModuleActions) Allowed() []ActionType {
	allowed := make([]ActionType, 0, len(Actions))
	for _, a := range Actions {
		if m.Has(a) {
			allowed = append(allowed, a)
		}
	}
	return allowed
}

// Union grants everything granted in either value.
func (m ModuleActions) Union(other ModuleActions) ModuleActions {
	out := m
	for _, a := range Actions {
		if other.Has(a) {
			out.Set(a, true)
		}
	}
	return out
}

// Status is the tri-state rollup of the seven actions.
func (m ModuleActions) Status() SelectionStatus {
	n := m.Count()
	return Rollup(len(Actions), n, n)
}

// UnmarshalJSON only accepts objects that name every action exactly once.
func (m *ModuleActions) UnmarshalJSON(data []byte) error {
	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != len(Actions) {
		return ErrPartialActions
	}

	var out ModuleActions
	for key, granted := range raw {
		if !out.Set(ActionType(key), granted) {
			return fmt.Errorf("%w: unexpected key %q", ErrPartialActions, key)
		}
	}
	*m = out
	return nil
}
