package webhook

import (
	"testing"
	"time"

	"github.com/eojodrabmol/goto-sms-webhook/core/api/models"
	"github.com/eojodrabmol/goto-sms-webhook/core/common"
	"github.com/eojodrabmol/goto-sms-webhook/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, strict bool) (*Store, *storage.MemoryStore) {
	t.Helper()

	persist := storage.NewMemoryStore()
	changelog, err := NewRecorder(persist, "2.0")
	require.NoError(t, err)

	store, err := NewStore(persist, changelog, strict)
	require.NoError(t, err)
	return store, persist
}

func sampleConfig() models.NotificationConfig {
	return models.NotificationConfig{
		Recipients:      "+15551234567,+15559876543",
		MessageTemplate: "Call from {callerNumber}",
		Description:     "Đường dây VIP",
		Tags:            []string{"vip", "sales"},
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	store, _ := newTestStore(t, false)

	require.NoError(t, store.Create("vip", sampleConfig()))

	got, ok := store.Get("vip")
	require.True(t, ok)
	assert.Equal(t, "+15551234567,+15559876543", got.Recipients)
	assert.Empty(t, got.ArchivedAt)

	active, archived := store.List()
	assert.Len(t, active, 1)
	assert.Empty(t, archived)
}

func TestStoreCreateOverwritesByDefault(t *testing.T) {
	store, _ := newTestStore(t, false)

	require.NoError(t, store.Create("vip", sampleConfig()))

	replacement := sampleConfig()
	replacement.Recipients = "+15550000000"
	require.NoError(t, store.Create("vip", replacement))

	got, ok := store.Get("vip")
	require.True(t, ok)
	assert.Equal(t, "+15550000000", got.Recipients)
}

func TestStoreCreateStrictRejectsDuplicate(t *testing.T) {
	store, _ := newTestStore(t, true)

	require.NoError(t, store.Create("vip", sampleConfig()))

	err := store.Create("vip", sampleConfig())
	require.Error(t, err)
	assert.Equal(t, common.StatusConflict, common.StatusOf(err))

	// Entry gốc không bị đụng đến
	got, ok := store.Get("vip")
	require.True(t, ok)
	assert.Equal(t, sampleConfig().Recipients, got.Recipients)
}

func TestStoreCreateClearsArchivedAt(t *testing.T) {
	store, _ := newTestStore(t, false)

	cfg := sampleConfig()
	cfg.ArchivedAt = "2026-01-01T00:00:00Z"
	require.NoError(t, store.Create("vip", cfg))

	got, _ := store.Get("vip")
	assert.Empty(t, got.ArchivedAt)
}

func TestStoreUpdateMergesPartialFields(t *testing.T) {
	store, _ := newTestStore(t, false)
	require.NoError(t, store.Create("vip", sampleConfig()))

	newRecipients := "+15551112222"
	old, updated, err := store.Update("vip", models.NotificationConfigPatch{
		Recipients: &newRecipients,
	})
	require.NoError(t, err)

	assert.Equal(t, sampleConfig().Recipients, old.Recipients)
	assert.Equal(t, newRecipients, updated.Recipients)
	// Field không có trong patch giữ nguyên
	assert.Equal(t, sampleConfig().MessageTemplate, updated.MessageTemplate)
	assert.Equal(t, sampleConfig().Description, updated.Description)

	got, _ := store.Get("vip")
	assert.Equal(t, newRecipients, got.Recipients)
}

func TestStoreUpdateUnknownName(t *testing.T) {
	store, _ := newTestStore(t, false)

	_, _, err := store.Update("missing", models.NotificationConfigPatch{})
	require.Error(t, err)
	assert.Equal(t, common.StatusNotFound, common.StatusOf(err))
}

func TestStoreArchiveMovesEntry(t *testing.T) {
	store, _ := newTestStore(t, false)
	require.NoError(t, store.Create("vip", sampleConfig()))

	require.NoError(t, store.Archive("vip"))

	_, ok := store.Get("vip")
	assert.False(t, ok, "archived entry không được trigger")

	active, archived := store.List()
	assert.Empty(t, active)
	require.Contains(t, archived, "vip")
	assert.NotEmpty(t, archived["vip"].ArchivedAt)

	_, err := time.Parse(time.RFC3339, archived["vip"].ArchivedAt)
	assert.NoError(t, err)
}

func TestStoreArchiveThenRestoreRoundTrips(t *testing.T) {
	store, _ := newTestStore(t, false)
	original := sampleConfig()
	require.NoError(t, store.Create("vip", original))

	require.NoError(t, store.Archive("vip"))
	require.NoError(t, store.Restore("vip"))

	got, ok := store.Get("vip")
	require.True(t, ok)
	assert.Empty(t, got.ArchivedAt)
	original.ArchivedAt = ""
	assert.Equal(t, original, got)

	_, archived := store.List()
	assert.Empty(t, archived)
}

func TestStoreArchiveUnknownName(t *testing.T) {
	store, _ := newTestStore(t, false)

	err := store.Archive("missing")
	require.Error(t, err)
	assert.Equal(t, common.StatusNotFound, common.StatusOf(err))
}

func TestStoreRestoreUnknownName(t *testing.T) {
	store, _ := newTestStore(t, false)

	err := store.Restore("missing")
	require.Error(t, err)
	assert.Equal(t, common.StatusNotFound, common.StatusOf(err))
}

// Save thất bại thì memory phải giữ nguyên - không có divergence ngầm
func TestStoreCreateFailedSaveLeavesMemoryUnchanged(t *testing.T) {
	store, persist := newTestStore(t, false)
	require.NoError(t, store.Create("vip", sampleConfig()))

	persist.FailSaves = 1
	err := store.Create("other", sampleConfig())
	require.Error(t, err)
	assert.Equal(t, common.StatusInternalServerError, common.StatusOf(err))

	_, ok := store.Get("other")
	assert.False(t, ok)

	active, _ := store.List()
	assert.Len(t, active, 1)
}

func TestStoreArchiveFailedSaveLeavesMemoryUnchanged(t *testing.T) {
	store, persist := newTestStore(t, false)
	require.NoError(t, store.Create("vip", sampleConfig()))

	// Document thứ hai (archived) fail - webhooks đã ghi phải được rollback
	persist.SkipSaves = 1
	persist.FailSaves = 1
	err := store.Archive("vip")
	require.Error(t, err)

	_, ok := store.Get("vip")
	assert.True(t, ok, "entry phải vẫn nằm trong active")
	_, archived := store.List()
	assert.Empty(t, archived)
}

func TestStoreStateSurvivesReload(t *testing.T) {
	store, persist := newTestStore(t, false)
	require.NoError(t, store.Create("vip", sampleConfig()))
	require.NoError(t, store.Create("support", sampleConfig()))
	require.NoError(t, store.Archive("support"))

	changelog, err := NewRecorder(persist, "2.0")
	require.NoError(t, err)
	reloaded, err := NewStore(persist, changelog, false)
	require.NoError(t, err)

	active, archived := reloaded.List()
	assert.Contains(t, active, "vip")
	assert.Contains(t, archived, "support")
	assert.Len(t, active, 1)
	assert.Len(t, archived, 1)
}

func TestStoreImportMergesAndKeepsDisjoint(t *testing.T) {
	store, _ := newTestStore(t, false)
	require.NoError(t, store.Create("existing", sampleConfig()))

	imported := sampleConfig()
	imported.Recipients = "+15553334444"
	count, err := store.Import(
		map[string]models.NotificationConfig{"existing": imported, "fresh": sampleConfig()},
		map[string]models.NotificationConfig{"old-one": sampleConfig()},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	active, archived := store.List()
	assert.Equal(t, "+15553334444", active["existing"].Recipients)
	assert.Contains(t, active, "fresh")
	assert.Contains(t, archived, "old-one")

	// Disjointness: không tên nào nằm trong cả hai map
	for name := range active {
		assert.NotContains(t, archived, name)
	}
}

func TestStoreImportArchivedDisplacesActiveEntry(t *testing.T) {
	store, _ := newTestStore(t, false)
	require.NoError(t, store.Create("vip", sampleConfig()))

	_, err := store.Import(nil, map[string]models.NotificationConfig{"vip": sampleConfig()})
	require.NoError(t, err)

	_, ok := store.Get("vip")
	assert.False(t, ok)
	_, archived := store.List()
	assert.Contains(t, archived, "vip")
}

func TestStoreStats(t *testing.T) {
	store, _ := newTestStore(t, false)
	require.NoError(t, store.Create("a", sampleConfig()))
	require.NoError(t, store.Create("b", sampleConfig()))
	require.NoError(t, store.Archive("b"))

	activeCount, archivedCount := store.Stats()
	assert.Equal(t, 1, activeCount)
	assert.Equal(t, 1, archivedCount)
}

func TestStoreMutationsAreRecorded(t *testing.T) {
	store, _ := newTestStore(t, false)
	require.NoError(t, store.Create("vip", sampleConfig()))
	newDesc := "updated"
	_, _, err := store.Update("vip", models.NotificationConfigPatch{Description: &newDesc})
	require.NoError(t, err)
	require.NoError(t, store.Archive("vip"))
	require.NoError(t, store.Restore("vip"))

	entries := store.Changelog().List()
	require.Len(t, entries, 4)
	assert.Equal(t, models.ActionConfigCreated, entries[0].Action)
	assert.Equal(t, models.ActionConfigUpdated, entries[1].Action)
	assert.Equal(t, models.ActionConfigArchived, entries[2].Action)
	assert.Equal(t, models.ActionConfigRestored, entries[3].Action)
	for _, e := range entries {
		assert.Equal(t, "vip", e.WebhookName)
		assert.Equal(t, "2.0", e.Version)
	}
}
