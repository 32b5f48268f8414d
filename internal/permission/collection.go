package permission

import "fmt"

// ContributionRole is a user's role within one Collection's membership
// (admin/editor/viewer), distinct from the system-wide UserRole (spec
// §S3 "Collection-role permission matrix").
type ContributionRole string

const (
	ContributionRoleAdmin  ContributionRole = "admin"
	ContributionRoleEditor ContributionRole = "editor"
	ContributionRoleViewer ContributionRole = "viewer"
)

// Collection is the subset of a Collection entity's state the permission
// matrix below consumes.
type Collection struct {
	Private     bool
	OwnerID     int64
	BadgeName   *string
	Roles       []CollectionRoleAssignment
}

// CollectionRoleAssignment associates one user with one ContributionRole
// on a Collection.
type CollectionRoleAssignment struct {
	UserID int64
	Role   ContributionRole
}

func (c *Collection) isOfficial() bool { return c.BadgeName != nil }

func (c *Collection) rolesFor(userID int64) []ContributionRole {
	var roles []ContributionRole
	for _, a := range c.Roles {
		if a.UserID == userID {
			roles = append(roles, a.Role)
		}
	}
	return roles
}

func rolesPermitted[T comparable](held []T, allowed []T) bool {
	for _, h := range held {
		for _, a := range allowed {
			if h == a {
				return true
			}
		}
	}
	return false
}

// HasCollectionPermission implements spec §S3's collection-role permission
// matrix, ported from the original's admin/editor/viewer tiers rather than
// left as an open authorization slot. It is the one entity type this core
// gives explicit per-action policy, since the original fully specifies it.
func HasCollectionPermission(user *User, c *Collection, action Action) (PermissionResponse, error) {
	isOwner := user != nil && user.ID == c.OwnerID
	var roles []ContributionRole
	var activeRoles []UserRole
	if user != nil {
		roles = c.rolesFor(user.ID)
		activeRoles = user.ActiveRoles
	}
	hasRelation := isOwner || len(roles) > 0

	switch action {
	case ActionRead:
		if !c.Private {
			return Permit(), nil
		}
		if isOwner {
			return Permit(), nil
		}
		if rolesPermitted(roles, []ContributionRole{ContributionRoleAdmin, ContributionRoleEditor, ContributionRoleViewer}) {
			return Permit(), nil
		}
		if rolesPermitted(activeRoles, []UserRole{UserRoleAdmin}) {
			return Permit(), nil
		}
		return denyForEntity(c.Private, user, hasRelation, "collection", ""), nil

	case ActionUpdate:
		if isOwner {
			return Permit(), nil
		}
		if rolesPermitted(roles, []ContributionRole{ContributionRoleAdmin, ContributionRoleEditor}) {
			return Permit(), nil
		}
		if rolesPermitted(activeRoles, []UserRole{UserRoleAdmin}) {
			return Permit(), nil
		}
		return denyForEntity(c.Private, user, hasRelation, "collection", ""), nil

	case ActionDelete:
		if rolesPermitted(activeRoles, []UserRole{UserRoleAdmin}) {
			return Permit(), nil
		}
		if !c.isOfficial() && isOwner && c.Private {
			return Permit(), nil
		}
		return denyForEntity(c.Private, user, hasRelation, "collection", ""), nil

	case ActionPublish:
		if isOwner {
			return Permit(), nil
		}
		if rolesPermitted(roles, []ContributionRole{ContributionRoleAdmin}) {
			return Permit(), nil
		}
		if rolesPermitted(activeRoles, []UserRole{UserRoleAdmin}) {
			return Permit(), nil
		}
		return denyForEntity(c.Private, user, hasRelation, "collection", ""), nil

	case ActionAddExperiment, ActionAddScoreSet:
		if isOwner {
			return Permit(), nil
		}
		if rolesPermitted(roles, []ContributionRole{ContributionRoleAdmin, ContributionRoleEditor}) {
			return Permit(), nil
		}
		if rolesPermitted(activeRoles, []UserRole{UserRoleAdmin}) {
			return Permit(), nil
		}
		return denyForEntity(c.Private, user, hasRelation, "collection", ""), nil

	case ActionAddRole:
		if isOwner {
			return Permit(), nil
		}
		if rolesPermitted(roles, []ContributionRole{ContributionRoleAdmin}) {
			return Permit(), nil
		}
		if rolesPermitted(activeRoles, []UserRole{UserRoleAdmin}) {
			return Permit(), nil
		}
		return denyForEntity(c.Private, user, hasRelation, "collection", ""), nil

	case ActionAddBadge:
		if rolesPermitted(activeRoles, []UserRole{UserRoleAdmin}) {
			return Permit(), nil
		}
		return denyForEntity(c.Private, user, hasRelation, "collection", ""), nil

	default:
		return PermissionResponse{}, fmt.Errorf("action %q is not supported for collection entities", action)
	}
}
