package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCollectionPermission_ReadPublic(t *testing.T) {
	c := &Collection{Private: false}
	resp, err := HasCollectionPermission(nil, c, ActionRead)
	require.NoError(t, err)
	assert.True(t, resp.Permitted)
}

func TestHasCollectionPermission_ReadPrivateDeniedAsNotFound(t *testing.T) {
	c := &Collection{Private: true, OwnerID: 1}
	user := &User{ID: 2}
	resp, err := HasCollectionPermission(user, c, ActionRead)
	require.NoError(t, err)
	assert.False(t, resp.Permitted)
	assert.Equal(t, 404, resp.HTTPStatus)
}

func TestHasCollectionPermission_ReadPrivateViewerRole(t *testing.T) {
	c := &Collection{Private: true, OwnerID: 1, Roles: []CollectionRoleAssignment{{UserID: 2, Role: ContributionRoleViewer}}}
	user := &User{ID: 2}
	resp, err := HasCollectionPermission(user, c, ActionRead)
	require.NoError(t, err)
	assert.True(t, resp.Permitted)
}

func TestHasCollectionPermission_UpdateViewerDenied(t *testing.T) {
	c := &Collection{Private: true, OwnerID: 1, Roles: []CollectionRoleAssignment{{UserID: 2, Role: ContributionRoleViewer}}}
	user := &User{ID: 2}
	resp, err := HasCollectionPermission(user, c, ActionUpdate)
	require.NoError(t, err)
	assert.False(t, resp.Permitted)
	assert.Equal(t, 403, resp.HTTPStatus)
}

func TestHasCollectionPermission_UpdateEditorPermitted(t *testing.T) {
	c := &Collection{Private: true, OwnerID: 1, Roles: []CollectionRoleAssignment{{UserID: 2, Role: ContributionRoleEditor}}}
	user := &User{ID: 2}
	resp, err := HasCollectionPermission(user, c, ActionUpdate)
	require.NoError(t, err)
	assert.True(t, resp.Permitted)
}

func TestHasCollectionPermission_DeleteOnlyWhilePrivate(t *testing.T) {
	owner := &User{ID: 1}
	priv := &Collection{Private: true, OwnerID: 1}
	resp, err := HasCollectionPermission(owner, priv, ActionDelete)
	require.NoError(t, err)
	assert.True(t, resp.Permitted)

	published := &Collection{Private: false, OwnerID: 1}
	resp, err = HasCollectionPermission(owner, published, ActionDelete)
	require.NoError(t, err)
	assert.False(t, resp.Permitted)
}

func TestHasCollectionPermission_DeleteSystemAdminAlwaysPermitted(t *testing.T) {
	admin := &User{ID: 99, ActiveRoles: []UserRole{UserRoleAdmin}}
	published := &Collection{Private: false, OwnerID: 1}
	resp, err := HasCollectionPermission(admin, published, ActionDelete)
	require.NoError(t, err)
	assert.True(t, resp.Permitted)
}

func TestHasCollectionPermission_AddBadgeRequiresSystemAdmin(t *testing.T) {
	owner := &User{ID: 1}
	c := &Collection{Private: false, OwnerID: 1}
	resp, err := HasCollectionPermission(owner, c, ActionAddBadge)
	require.NoError(t, err)
	assert.False(t, resp.Permitted)

	admin := &User{ID: 2, ActiveRoles: []UserRole{UserRoleAdmin}}
	resp, err = HasCollectionPermission(admin, c, ActionAddBadge)
	require.NoError(t, err)
	assert.True(t, resp.Permitted)
}

func TestHasCollectionPermission_UnsupportedActionErrors(t *testing.T) {
	c := &Collection{Private: false}
	_, err := HasCollectionPermission(nil, c, ActionChangeRank)
	require.Error(t, err)
}
