package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/models"
)

// memoryStorage keeps settings in memory for tests
type memoryStorage struct {
	saved  *models.RagSettings
	failed error
}

func (m *memoryStorage) Get() (models.RagSettings, error) {
	if m.saved == nil {
		return models.DefaultRagSettings(), nil
	}
	return *m.saved, nil
}

func (m *memoryStorage) Save(settings models.RagSettings) error {
	if m.failed != nil {
		return m.failed
	}
	m.saved = &settings
	return nil
}

func TestGet_DefaultsWhenUnsaved(t *testing.T) {
	svc := NewService(&memoryStorage{}, arbor.NewLogger())

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRagSettings(), got)
	assert.Equal(t, 1000, got.ChunkSize)
	assert.Equal(t, 200, got.ChunkOverlap)
	assert.Equal(t, 4, got.RetrievalK)
	assert.Equal(t, "gpt-3.5-turbo-0125", got.Model)
}

func TestUpdate_PersistsValidSettings(t *testing.T) {
	store := &memoryStorage{}
	svc := NewService(store, arbor.NewLogger())

	updated, err := svc.Update(models.RagSettings{
		ChunkSize:    500,
		ChunkOverlap: 50,
		RetrievalK:   8,
		Temperature:  0.7,
		Model:        "gpt-4o",
	})
	require.NoError(t, err)
	assert.Equal(t, 500, updated.ChunkSize)

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdate_RejectsOutOfRangeValues(t *testing.T) {
	svc := NewService(&memoryStorage{}, arbor.NewLogger())

	base := models.DefaultRagSettings()

	small := base
	small.ChunkSize = 50
	_, err := svc.Update(small)
	assert.Error(t, err)

	big := base
	big.ChunkSize = 9000
	_, err = svc.Update(big)
	assert.Error(t, err)

	overlap := base
	overlap.ChunkOverlap = 600
	_, err = svc.Update(overlap)
	assert.Error(t, err)

	k := base
	k.RetrievalK = 0
	_, err = svc.Update(k)
	assert.Error(t, err)

	temp := base
	temp.Temperature = 2.5
	_, err = svc.Update(temp)
	assert.Error(t, err)

	model := base
	model.Model = ""
	_, err = svc.Update(model)
	assert.Error(t, err)
}

func TestUpdate_RejectsOverlapNotSmallerThanSize(t *testing.T) {
	svc := NewService(&memoryStorage{}, arbor.NewLogger())

	s := models.DefaultRagSettings()
	s.ChunkSize = 200
	s.ChunkOverlap = 200
	_, err := svc.Update(s)
	assert.Error(t, err)
}

func TestUpdate_InvalidSettingsNotPersisted(t *testing.T) {
	store := &memoryStorage{}
	svc := NewService(store, arbor.NewLogger())

	bad := models.DefaultRagSettings()
	bad.RetrievalK = 99
	_, err := svc.Update(bad)
	require.Error(t, err)
	assert.Nil(t, store.saved)
}

func TestReset(t *testing.T) {
	store := &memoryStorage{}
	svc := NewService(store, arbor.NewLogger())

	custom := models.DefaultRagSettings()
	custom.ChunkSize = 2000
	_, err := svc.Update(custom)
	require.NoError(t, err)

	got, err := svc.Reset()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRagSettings(), got)
}
