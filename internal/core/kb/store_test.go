package kb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/models"
)

type fakeSource struct {
	entries   []models.KnowledgeBaseEntry
	nextID    string
	err       error
	deleteHit bool
}

func (f *fakeSource) ListKnowledgeBase(ctx context.Context) ([]models.KnowledgeBaseEntry, error) {
	return f.entries, f.err
}

func (f *fakeSource) CreateKnowledgeEntry(ctx context.Context, e models.KnowledgeBaseEntry) (models.KnowledgeBaseEntry, error) {
	if f.err != nil {
		return models.KnowledgeBaseEntry{}, f.err
	}
	e.ID = f.nextID
	return e, nil
}

func (f *fakeSource) UpdateKnowledgeEntry(ctx context.Context, id string, e models.KnowledgeBaseEntry) (models.KnowledgeBaseEntry, error) {
	return e, f.err
}

func (f *fakeSource) DeleteKnowledgeEntry(ctx context.Context, id string) (bool, error) {
	return f.deleteHit, f.err
}

func seeded(t *testing.T) (*Store, *fakeSource) {
	src := &fakeSource{entries: []models.KnowledgeBaseEntry{
		{ID: "1", KeyQuestion: "¿Cuál es el precio?", Answer: "Depende del plan", Active: true, Tags: []string{"precios"}},
		{ID: "2", KeyQuestion: "Horario de atención", Answer: "Lunes a viernes", Active: true, Tags: []string{"horario"}},
	}}
	store := NewStore(src)
	require.NoError(t, store.Load(context.Background()))
	return store, src
}

func TestStore_Search(t *testing.T) {
	store, _ := seeded(t)

	assert.Len(t, store.Search(""), 2)
	assert.Len(t, store.Search("PRECIO"), 1)
	assert.Len(t, store.Search("viernes"), 1)
	assert.Len(t, store.Search("horario"), 1)
	assert.Empty(t, store.Search("envío"))
}

func TestStore_CreateUpdateDelete(t *testing.T) {
	store, src := seeded(t)
	ctx := context.Background()

	src.nextID = "3"
	created, err := store.Create(ctx, models.KnowledgeBaseEntry{KeyQuestion: "Envíos", Answer: "3-5 días", Active: true})
	require.NoError(t, err)
	assert.Equal(t, "3", created.ID)
	assert.Len(t, store.Entries(), 3)

	updated, err := store.Update(ctx, "3", models.KnowledgeBaseEntry{KeyQuestion: "Envíos", Answer: "2 días"})
	require.NoError(t, err)
	assert.Equal(t, "3", updated.ID)
	assert.Equal(t, "2 días", store.Search("envíos")[0].Answer)

	src.deleteHit = true
	require.NoError(t, store.Delete(ctx, "3"))
	assert.Len(t, store.Entries(), 2)

	src.deleteHit = false
	assert.ErrorIs(t, store.Delete(ctx, "99"), ErrNotFound)
}

func TestStore_Validation(t *testing.T) {
	store, _ := seeded(t)
	_, err := store.Create(context.Background(), models.KnowledgeBaseEntry{KeyQuestion: " ", Answer: "x"})
	assert.Error(t, err)
	_, err = store.Update(context.Background(), "1", models.KnowledgeBaseEntry{KeyQuestion: "x"})
	assert.Error(t, err)
	assert.Len(t, store.Entries(), 2)
}

func TestStore_FailuresKeepLocalList(t *testing.T) {
	store, src := seeded(t)
	src.err = errors.New("backend down")

	assert.Error(t, store.Load(context.Background()))
	_, err := store.Create(context.Background(), models.KnowledgeBaseEntry{KeyQuestion: "q", Answer: "a"})
	assert.Error(t, err)
	assert.Error(t, store.Delete(context.Background(), "1"))

	assert.Len(t, store.Entries(), 2)
	assert.Error(t, store.Err())
}
