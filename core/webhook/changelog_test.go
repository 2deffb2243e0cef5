package webhook

import (
	"fmt"
	"testing"
	"time"

	"github.com/eojodrabmol/goto-sms-webhook/core/api/models"
	"github.com/eojodrabmol/goto-sms-webhook/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderRecordAndList(t *testing.T) {
	persist := storage.NewMemoryStore()
	r, err := NewRecorder(persist, "2.0")
	require.NoError(t, err)

	r.Record(models.ActionConfigCreated, "vip", map[string]any{"note": "first"})
	r.Record(models.ActionWebhookTriggered, "vip", nil)

	entries := r.List()
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionConfigCreated, entries[0].Action)
	assert.Equal(t, models.ActionWebhookTriggered, entries[1].Action)
	assert.Equal(t, "2.0", entries[0].Version)

	ts, err := time.Parse(time.RFC3339, entries[0].Timestamp)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, ts.Location())
}

func TestRecorderCapDropsOldest(t *testing.T) {
	persist := storage.NewMemoryStore()
	r, err := NewRecorder(persist, "2.0")
	require.NoError(t, err)

	for i := 0; i < maxChangelogEntries+1; i++ {
		r.Record(models.ActionConfigUpdated, fmt.Sprintf("cfg-%d", i), nil)
	}

	entries := r.List()
	require.Len(t, entries, maxChangelogEntries)
	// Entry cũ nhất (cfg-0) bị drop, thứ tự còn lại giữ nguyên
	assert.Equal(t, "cfg-1", entries[0].WebhookName)
	assert.Equal(t, fmt.Sprintf("cfg-%d", maxChangelogEntries), entries[len(entries)-1].WebhookName)
}

func TestRecorderTruncatesOversizeDocumentOnLoad(t *testing.T) {
	persist := storage.NewMemoryStore()

	oversize := make([]models.ChangelogEntry, maxChangelogEntries+20)
	for i := range oversize {
		oversize[i] = models.ChangelogEntry{
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			Action:      models.ActionConfigCreated,
			WebhookName: fmt.Sprintf("cfg-%d", i),
			Version:     "1.0",
		}
	}
	require.NoError(t, persist.Save(storage.DocChangelog, oversize))

	r, err := NewRecorder(persist, "2.0")
	require.NoError(t, err)

	assert.Equal(t, maxChangelogEntries, r.Len())
	assert.Equal(t, "cfg-20", r.List()[0].WebhookName)
}

// Persist fail không được chặn entry - changelog chỉ mang tính advisory
func TestRecorderKeepsEntryWhenPersistFails(t *testing.T) {
	persist := storage.NewMemoryStore()
	r, err := NewRecorder(persist, "2.0")
	require.NoError(t, err)

	persist.FailSaves = 1
	r.Record(models.ActionConfigCreated, "vip", nil)

	assert.Equal(t, 1, r.Len())
}

func TestRecorderSurvivesReload(t *testing.T) {
	persist := storage.NewMemoryStore()
	r, err := NewRecorder(persist, "2.0")
	require.NoError(t, err)
	r.Record(models.ActionConfigCreated, "vip", nil)
	r.Record(models.ActionConfigArchived, "vip", nil)

	reloaded, err := NewRecorder(persist, "2.0")
	require.NoError(t, err)

	entries := reloaded.List()
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionConfigArchived, entries[1].Action)
}
