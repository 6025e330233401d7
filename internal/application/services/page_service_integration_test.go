package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/internal/infrastructure/database"
	"github.com/sitewise/backend/pkg/auth"
	"github.com/sitewise/backend/pkg/constants"
	"github.com/sitewise/backend/pkg/errors"
)

// setupIntegration connects to the dev database and wires a ServiceManager.
// Tests are skipped when no database is reachable, so the suite still runs
// in environments without MySQL/TiDB.
func setupIntegration(t *testing.T) *ServiceManager {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	conn, err := database.GetInstance()
	if err != nil {
		t.Logf("Skipping integration test: failed to connect to DB: %v", err)
		t.SkipNow()
	}
	return NewServiceManager(conn)
}

func testEditor() auth.UserSession {
	return auth.UserSession{
		ID:    "test-editor",
		Name:  "Test Editor",
		Email: "editor@test.local",
		Role:  constants.RoleEditor,
	}
}

func createTestSite(t *testing.T, sm *ServiceManager) *models.Site {
	t.Helper()
	slug := fmt.Sprintf("it-%d", time.Now().UnixNano())
	site, err := sm.Sites.Create(context.Background(), slug, "Integration Test Site")
	require.NoError(t, err)
	return site
}

func heroEnvelope(title string) map[string]interface{} {
	return map[string]interface{}{
		"schemaVersion": 1,
		"data": map[string]interface{}{
			"content": []interface{}{
				map[string]interface{}{
					"type": "hero",
					"props": map[string]interface{}{
						"id":    "block-hero-1",
						"title": title,
					},
				},
			},
			"root": map[string]interface{}{},
		},
	}
}

func TestPageRevisionHistory(t *testing.T) {
	sm := setupIntegration(t)
	ctx := context.Background()
	site := createTestSite(t, sm)
	user := testEditor()

	page, err := sm.Pages.Create(ctx, site.ID, "history", "History Page", user)
	require.NoError(t, err)
	defer sm.Pages.Delete(ctx, page.ID)

	// Creation seeds version 1 with an empty envelope
	assert.Equal(t, 1, page.LatestVersion)

	for i := 0; i < 3; i++ {
		rev, err := sm.Pages.SaveDraft(ctx, page.ID, heroEnvelope(fmt.Sprintf("Draft %d", i)), nil, user)
		require.NoError(t, err)
		assert.Equal(t, 2+i, rev.Version)
	}

	revs, err := sm.Pages.ListRevisions(ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, revs, 4)
	for i := 1; i < len(revs); i++ {
		assert.Greater(t, revs[i-1].Version, revs[i].Version, "revisions must be newest first")
	}

	draft, err := sm.Pages.GetDraft(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, draft.Version)
}

func TestPageSaveDraftRejectsInvalidEnvelope(t *testing.T) {
	sm := setupIntegration(t)
	ctx := context.Background()
	site := createTestSite(t, sm)
	user := testEditor()

	page, err := sm.Pages.Create(ctx, site.ID, "strict", "Strict Page", user)
	require.NoError(t, err)
	defer sm.Pages.Delete(ctx, page.ID)

	bad := []interface{}{
		"not an object",
		map[string]interface{}{"schemaVersion": 1},
		map[string]interface{}{"schemaVersion": 99, "data": map[string]interface{}{"content": []interface{}{}}},
		map[string]interface{}{"schemaVersion": 1, "data": map[string]interface{}{"content": []interface{}{
			map[string]interface{}{"type": "hero", "props": map[string]interface{}{}},
		}}},
	}
	for _, raw := range bad {
		_, err := sm.Pages.SaveDraft(ctx, page.ID, raw, nil, user)
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	}

	// Nothing was appended
	revs, err := sm.Pages.ListRevisions(ctx, page.ID)
	require.NoError(t, err)
	assert.Len(t, revs, 1)
}

func TestRevisionRetentionCap(t *testing.T) {
	sm := setupIntegration(t)
	ctx := context.Background()
	site := createTestSite(t, sm)
	user := testEditor()

	page, err := sm.Pages.Create(ctx, site.ID, "retention", "Retention Page", user)
	require.NoError(t, err)
	defer sm.Pages.Delete(ctx, page.ID)

	for i := 0; i < 14; i++ {
		_, err := sm.Pages.SaveDraft(ctx, page.ID, heroEnvelope(fmt.Sprintf("Save %d", i)), nil, user)
		require.NoError(t, err)
	}

	revs, err := sm.Pages.ListRevisions(ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, revs, constants.RevisionRetentionCap)

	// 1 create + 14 saves: newest is v15, the window reaches back to v6.
	// Versions beyond the cap are gone but never reused.
	assert.Equal(t, 15, revs[0].Version)
	assert.Equal(t, 6, revs[len(revs)-1].Version)
}

func TestRetentionCanOutrunPublishedPointer(t *testing.T) {
	sm := setupIntegration(t)
	ctx := context.Background()
	site := createTestSite(t, sm)
	user := testEditor()

	page, err := sm.Pages.Create(ctx, site.ID, "outrun", "Outrun Page", user)
	require.NoError(t, err)
	defer sm.Pages.Delete(ctx, page.ID)

	_, err = sm.Pages.SaveDraft(ctx, page.ID, heroEnvelope("Live copy"), nil, user)
	require.NoError(t, err)
	published, err := sm.Pages.Publish(ctx, page.ID, nil, "", user)
	require.NoError(t, err)
	pointer := *published.PublishedRevisionID

	// Retention keeps the highest versions regardless of the pointer, so
	// enough drafts on top of a published revision trim it away. The page
	// stays PUBLISHED but the public read has nothing left to serve.
	for i := 0; i < constants.RevisionRetentionCap; i++ {
		_, err := sm.Pages.SaveDraft(ctx, page.ID, heroEnvelope(fmt.Sprintf("Draft %d", i)), nil, user)
		require.NoError(t, err)
	}

	current, err := sm.Pages.Get(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusPublished, current.Status)
	require.NotNil(t, current.PublishedRevisionID)
	assert.Equal(t, pointer, *current.PublishedRevisionID)

	_, err = sm.Pages.PublicBySlug(ctx, site.Slug, "outrun")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	// Republishing repairs the pointer
	_, err = sm.Pages.Publish(ctx, page.ID, nil, "", user)
	require.NoError(t, err)
	public, err := sm.Pages.PublicBySlug(ctx, site.Slug, "outrun")
	require.NoError(t, err)
	require.Len(t, public.Blocks, 1)
}

func TestRollbackAppendsCopy(t *testing.T) {
	sm := setupIntegration(t)
	ctx := context.Background()
	site := createTestSite(t, sm)
	user := testEditor()

	page, err := sm.Pages.Create(ctx, site.ID, "rollback", "Rollback Page", user)
	require.NoError(t, err)
	defer sm.Pages.Delete(ctx, page.ID)

	oldRev, err := sm.Pages.SaveDraft(ctx, page.ID, heroEnvelope("The good version"), nil, user)
	require.NoError(t, err)
	_, err = sm.Pages.SaveDraft(ctx, page.ID, heroEnvelope("A regression"), nil, user)
	require.NoError(t, err)

	newRev, err := sm.Pages.Rollback(ctx, page.ID, "", oldRev.Version, user)
	require.NoError(t, err)

	assert.Equal(t, oldRev.Version+2, newRev.Version, "rollback appends, never rewinds")
	assert.JSONEq(t, string(oldRev.Content), string(newRev.Content))
	require.NotNil(t, newRev.Note)
	assert.Equal(t, fmt.Sprintf("Rollback to version %d", oldRev.Version), *newRev.Note)

	// The source revision is still in the history
	revs, err := sm.Pages.ListRevisions(ctx, page.ID)
	require.NoError(t, err)
	found := false
	for _, rev := range revs {
		if rev.Version == oldRev.Version {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPublishPointerIsolation(t *testing.T) {
	sm := setupIntegration(t)
	ctx := context.Background()
	site := createTestSite(t, sm)
	user := testEditor()

	page, err := sm.Pages.Create(ctx, site.ID, "isolated", "Isolated Page", user)
	require.NoError(t, err)
	defer sm.Pages.Delete(ctx, page.ID)

	_, err = sm.Pages.SaveDraft(ctx, page.ID, heroEnvelope("Live copy"), nil, user)
	require.NoError(t, err)

	published, err := sm.Pages.Publish(ctx, page.ID, nil, "", user)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusPublished, published.Status)
	require.NotNil(t, published.PublishedRevisionID)

	// Draft saves after publish must not leak to visitors
	_, err = sm.Pages.SaveDraft(ctx, page.ID, heroEnvelope("Work in progress"), nil, user)
	require.NoError(t, err)

	public, err := sm.Pages.PublicBySlug(ctx, site.Slug, "isolated")
	require.NoError(t, err)
	require.Len(t, public.Blocks, 1)
	assert.Equal(t, "Live copy", public.Blocks[0].Block.Props["title"])

	// Publishing again moves the pointer to the newest revision
	_, err = sm.Pages.Publish(ctx, page.ID, nil, "", user)
	require.NoError(t, err)

	public, err = sm.Pages.PublicBySlug(ctx, site.Slug, "isolated")
	require.NoError(t, err)
	assert.Equal(t, "Work in progress", public.Blocks[0].Block.Props["title"])
}

func TestPublishWithContentCreatesRevision(t *testing.T) {
	sm := setupIntegration(t)
	ctx := context.Background()
	site := createTestSite(t, sm)
	user := testEditor()

	page, err := sm.Pages.Create(ctx, site.ID, "direct", "Direct Publish", user)
	require.NoError(t, err)
	defer sm.Pages.Delete(ctx, page.ID)

	_, err = sm.Pages.SaveDraft(ctx, page.ID, heroEnvelope("Draft copy"), nil, user)
	require.NoError(t, err)

	// Publishing with content snapshots exactly what was supplied,
	// even when it differs from the last saved draft.
	published, err := sm.Pages.Publish(ctx, page.ID, heroEnvelope("Published copy"), "", user)
	require.NoError(t, err)
	assert.Equal(t, 3, published.LatestVersion)
	require.NotNil(t, published.PublishedRevisionID)

	public, err := sm.Pages.PublicBySlug(ctx, site.Slug, "direct")
	require.NoError(t, err)
	require.Len(t, public.Blocks, 1)
	assert.Equal(t, "Published copy", public.Blocks[0].Block.Props["title"])

	// Invalid content is blocked before any revision is written
	_, err = sm.Pages.Publish(ctx, page.ID, map[string]interface{}{"schemaVersion": 1}, "", user)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	revs, err := sm.Pages.ListRevisions(ctx, page.ID)
	require.NoError(t, err)
	assert.Len(t, revs, 3)
}

func TestUnpublishTakesPageOffline(t *testing.T) {
	sm := setupIntegration(t)
	ctx := context.Background()
	site := createTestSite(t, sm)
	user := testEditor()

	page, err := sm.Pages.Create(ctx, site.ID, "offline", "Offline Page", user)
	require.NoError(t, err)
	defer sm.Pages.Delete(ctx, page.ID)

	_, err = sm.Pages.SaveDraft(ctx, page.ID, heroEnvelope("Soon gone"), nil, user)
	require.NoError(t, err)
	_, err = sm.Pages.Publish(ctx, page.ID, nil, "", user)
	require.NoError(t, err)

	unpublished, err := sm.Pages.Unpublish(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusDraft, unpublished.Status)
	assert.Nil(t, unpublished.PublishedRevisionID)

	_, err = sm.Pages.PublicBySlug(ctx, site.Slug, "offline")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	// History survives unpublish
	revs, err := sm.Pages.ListRevisions(ctx, page.ID)
	require.NoError(t, err)
	assert.Len(t, revs, 2)
}

func TestPageSlugConflict(t *testing.T) {
	sm := setupIntegration(t)
	ctx := context.Background()
	site := createTestSite(t, sm)
	user := testEditor()

	page, err := sm.Pages.Create(ctx, site.ID, "taken", "First", user)
	require.NoError(t, err)
	defer sm.Pages.Delete(ctx, page.ID)

	_, err = sm.Pages.Create(ctx, site.ID, "  /Taken/ ", "Second", user)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err), "slug conflicts are detected after normalization")
}
