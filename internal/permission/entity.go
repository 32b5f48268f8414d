package permission

// Entity is the minimal shape the generic decider needs from any owned,
// privacy-gated domain object (ScoreSet, Experiment, ExperimentSet). It
// deliberately carries no entity-specific fields: spec.md scopes the core
// to the decision shape, not entity-specific policy (see collection.go for
// the one matrix spec.md's distillation asked to keep explicit).
type Entity struct {
	Private     bool
	IsOwner     bool
	OfficialEntity bool
}

// Decide implements the generic owner-or-system-admin gate spec §4.J
// describes for entities without a richer role model: the owner and
// system admins may perform any action; anyone may READ a non-private
// entity; all other combinations are denied.
func Decide(action Action, entity Entity, user *User) PermissionResponse {
	if user.IsSystemAdmin() {
		return Permit()
	}

	switch action {
	case ActionRead:
		if !entity.Private || entity.IsOwner {
			return Permit()
		}
	default:
		if entity.IsOwner {
			return Permit()
		}
	}

	return denyForEntity(entity.Private, user, entity.IsOwner, "resource", "")
}
