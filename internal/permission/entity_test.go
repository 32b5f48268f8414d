package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide_ReadPublic(t *testing.T) {
	resp := Decide(ActionRead, Entity{Private: false}, nil)
	assert.True(t, resp.Permitted)
}

func TestDecide_ReadPrivateNonOwnerDenied(t *testing.T) {
	resp := Decide(ActionRead, Entity{Private: true}, &User{ID: 2})
	assert.False(t, resp.Permitted)
	assert.Equal(t, 404, resp.HTTPStatus)
}

func TestDecide_UpdateOwnerPermitted(t *testing.T) {
	resp := Decide(ActionUpdate, Entity{Private: true, IsOwner: true}, &User{ID: 1})
	assert.True(t, resp.Permitted)
}

func TestDecide_SystemAdminOverridesEverything(t *testing.T) {
	admin := &User{ID: 1, ActiveRoles: []UserRole{UserRoleAdmin}}
	resp := Decide(ActionDelete, Entity{Private: true, IsOwner: false}, admin)
	assert.True(t, resp.Permitted)
}
