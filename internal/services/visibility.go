package services

import (
	"rentalbill/internal/models"
	"rentalbill/internal/repositories"

	"github.com/google/uuid"
)

// ownerExistsPredicate scopes a history row to callers registered as owners
// of the row's project.
const ownerExistsPredicate = `EXISTS (
		SELECT 1 FROM project_owners po2
		WHERE po2.project_id = rh.project_id AND po2.user_id = ?
	)`

// applyVisibility conjoins the mandatory role predicate, if any. It must run
// before any user-supplied filter so the policy binding always comes first.
// superadmin, admin and employee see everything; user sees only rows of
// projects they own.
func applyVisibility(qb *repositories.ConditionBuilder, role models.Role, callerID uuid.UUID) error {
	if role != models.RoleUser {
		return nil
	}
	return qb.Where(ownerExistsPredicate, callerID)
}
