package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"requisition/internal/domain"
	"requisition/internal/repository"
)

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	auth := NewAuthService([]string{"Mary Ann", "Kevin"}, "admin", store)

	sess, err := auth.Login(ctx, "  mary ann ")
	require.NoError(t, err)
	assert.Equal(t, domain.User{ID: "mary_ann", Name: "Mary Ann", Role: domain.RoleDesigner}, sess.User)
	assert.Nil(t, sess.Announcement)

	sess, err = auth.Login(ctx, "ADMIN")
	require.NoError(t, err)
	assert.True(t, sess.User.IsAdmin())

	_, err = auth.Login(ctx, "stranger")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_AnnouncementOnlyWhenActive(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	auth := NewAuthService([]string{"Kevin"}, "admin", store)
	ann := NewAnnouncementService(store)

	require.NoError(t, ann.Save(ctx, domain.Announcement{Title: "Pickup day", Content: "Friday", IsActive: true}))
	sess, err := auth.Login(ctx, "kevin")
	require.NoError(t, err)
	require.NotNil(t, sess.Announcement)
	assert.Equal(t, "Pickup day", sess.Announcement.Title)

	require.NoError(t, ann.Save(ctx, domain.Announcement{Title: "Pickup day", IsActive: false}))
	sess, err = auth.Login(ctx, "kevin")
	require.NoError(t, err)
	assert.Nil(t, sess.Announcement)

	assert.ErrorIs(t, ann.Save(ctx, domain.Announcement{}), ErrInvalidInput)
}

func TestSeed_FillsEmptyStoreOnce(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, Seed(ctx, store, store))
	require.NoError(t, Seed(ctx, store, store))

	list, err := store.List(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 6)

	dye, err := store.GetByID(ctx, "p4")
	require.NoError(t, err)
	b, ok := dye.Bundle()
	require.True(t, ok)
	assert.Equal(t, int64(2), b.Buy)

	a, err := store.GetAnnouncement(ctx)
	require.NoError(t, err)
	assert.True(t, a.IsActive)
}
