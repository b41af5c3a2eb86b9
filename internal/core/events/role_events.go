package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRoleCreated = "role.created"
	EventTypeRoleUpdated = "role.updated"
	EventTypeRoleDeleted = "role.deleted"
)

// RoleEventTypes lists every role lifecycle event.
var RoleEventTypes = []string{EventTypeRoleCreated, EventTypeRoleUpdated, EventTypeRoleDeleted}

type RoleEvent struct {
	BaseEvent
	RoleID   int64  `json:"role_id"`
	RoleName string `json:"role_name"`
}

func newRoleEvent(eventType string, roleID int64, roleName string) *RoleEvent {
	return &RoleEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"role_id":   roleID,
				"role_name": roleName,
			},
		},
		RoleID:   roleID,
		RoleName: roleName,
	}
}

func NewRoleCreatedEvent(roleID int64, roleName string) *RoleEvent {
	return newRoleEvent(EventTypeRoleCreated, roleID, roleName)
}

func NewRoleUpdatedEvent(roleID int64, roleName string) *RoleEvent {
	return newRoleEvent(EventTypeRoleUpdated, roleID, roleName)
}

func NewRoleDeletedEvent(roleID int64, roleName string) *RoleEvent {
	return newRoleEvent(EventTypeRoleDeleted, roleID, roleName)
}

// NewRoleEvent builds a role event from its type name.
func NewRoleEvent(eventType string, roleID int64, roleName string) (*RoleEvent, bool) {
	for _, t := range RoleEventTypes {
		if t == eventType {
			return newRoleEvent(eventType, roleID, roleName), true
		}
	}
	return nil, false
}
