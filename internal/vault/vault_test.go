package vault_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lifevault/internal/audit"
	"github.com/dmitrymomot/lifevault/internal/store"
	"github.com/dmitrymomot/lifevault/internal/vault"
	"github.com/dmitrymomot/lifevault/pkg/vaultcrypto"
)

func newService(t *testing.T) (*vault.Service, *store.MemoryStore) {
	t.Helper()

	cipher, err := vaultcrypto.New("test-master-key")
	require.NoError(t, err)
	mem := store.NewMemoryStore()
	return vault.NewService(mem, cipher, audit.NewRecorder(mem)), mem
}

func ptr(s string) *string { return &s }

func TestCreateAndReveal(t *testing.T) {
	t.Parallel()

	svc, mem := newService(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, vault.CreateInput{
		ServiceName: "  GitHub ",
		Username:    "octo",
		Password:    "correct horse battery staple",
		Category:    "dev",
	})
	require.NoError(t, err)
	assert.Equal(t, "GitHub", created.ServiceName)
	assert.Empty(t, created.Password)

	stored, err := mem.GetEntry(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.EncryptedPassword, "horse")
	parts := strings.SplitN(stored.EncryptedPassword, ":", 2)
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], 32)

	revealed, err := svc.Reveal(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "correct horse battery staple", revealed.Password)

	_, err = svc.Reveal(ctx, uuid.New(), created.ID)
	assert.ErrorIs(t, err, vault.ErrNotFound)

	events, err := mem.ListEvents(ctx, userID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), vault.CreateInput{ServiceName: " ", Password: "x"})
	assert.ErrorIs(t, err, vault.ErrServiceNameRequired)

	_, err = svc.Create(ctx, uuid.New(), vault.CreateInput{ServiceName: "Bank"})
	assert.ErrorIs(t, err, vault.ErrPasswordRequired)
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	svc, mem := newService(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, vault.CreateInput{ServiceName: "Bank", Password: "old-pass"})
	require.NoError(t, err)
	before, err := mem.GetEntry(ctx, userID, created.ID)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, userID, created.ID, vault.UpdateInput{Notes: ptr("pin in safe")})
	require.NoError(t, err)
	assert.Equal(t, "pin in safe", updated.Notes)
	assert.Equal(t, "Bank", updated.ServiceName)

	after, err := mem.GetEntry(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, before.EncryptedPassword, after.EncryptedPassword, "password untouched without a new one")

	_, err = svc.Update(ctx, userID, created.ID, vault.UpdateInput{Password: ptr("new-pass")})
	require.NoError(t, err)
	revealed, err := svc.Reveal(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-pass", revealed.Password)

	_, err = svc.Update(ctx, userID, created.ID, vault.UpdateInput{ServiceName: ptr("")})
	assert.ErrorIs(t, err, vault.ErrServiceNameRequired)
	_, err = svc.Update(ctx, userID, created.ID, vault.UpdateInput{Password: ptr("")})
	assert.ErrorIs(t, err, vault.ErrPasswordRequired)
	_, err = svc.Update(ctx, uuid.New(), created.ID, vault.UpdateInput{Notes: ptr("x")})
	assert.ErrorIs(t, err, vault.ErrNotFound)
}

func TestListAndDelete(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()
	userID := uuid.New()

	for _, name := range []string{"GitHub", "GitLab", "Bank"} {
		_, err := svc.Create(ctx, userID, vault.CreateInput{ServiceName: name, Password: "p-" + name})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, userID, vault.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, e := range all {
		assert.Empty(t, e.Password)
	}

	git, err := svc.List(ctx, userID, vault.ListFilter{Search: "git"})
	require.NoError(t, err)
	assert.Len(t, git, 2)

	require.NoError(t, svc.Delete(ctx, userID, all[0].ID))
	assert.ErrorIs(t, svc.Delete(ctx, userID, all[0].ID), vault.ErrNotFound)

	rest, err := svc.List(ctx, userID, vault.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}

func TestRevealCorruptedCiphertext(t *testing.T) {
	t.Parallel()

	svc, mem := newService(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, vault.CreateInput{ServiceName: "Bank", Password: "secret"})
	require.NoError(t, err)

	stored, err := mem.GetEntry(ctx, userID, created.ID)
	require.NoError(t, err)
	stored.EncryptedPassword = "not-a-ciphertext"
	_, err = mem.UpdateEntry(ctx, stored)
	require.NoError(t, err)

	_, err = svc.Reveal(ctx, userID, created.ID)
	assert.ErrorIs(t, err, vaultcrypto.ErrDecryption)
}

func TestGeneratePassword(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)

	pw, err := svc.GeneratePassword(0)
	require.NoError(t, err)
	assert.Len(t, pw, vaultcrypto.DefaultPasswordLength)

	pw, err = svc.GeneratePassword(128)
	require.NoError(t, err)
	assert.Len(t, pw, 128)

	for _, n := range []int{-1, 129} {
		_, err = svc.GeneratePassword(n)
		assert.ErrorIs(t, err, vault.ErrInvalidPasswordLength, "length %d", n)
	}
}
