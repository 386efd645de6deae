// Package services contains the application services: registration and
// authentication, the employee directory, and portfolio curation.
package services

import (
	"github.com/staffolio/staffolio/internal/common"
	"github.com/staffolio/staffolio/internal/server/models"
)

// Caller is the identity resolved by the authorization gate for the current
// request. Services re-check the role on every operation; client-side role
// checks are UI hints only.
type Caller struct {
	ID   string
	Role models.Role
}

func requireManager(caller Caller) error {
	if caller.Role != models.RoleManager {
		return common.ErrorForbidden
	}
	return nil
}
