package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuqie6/SkillPractice/internal/schema"
	"github.com/yuqie6/SkillPractice/internal/testutil"
)

func TestRecordRepositoryInsertAndGet(t *testing.T) {
	repo := NewRecordRepository(testutil.OpenTestDB(t))
	ctx := context.Background()

	id, err := repo.Insert(ctx, schema.KindSkill, nil, "Scales", []byte(`{"name":"Scales"}`))
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := repo.GetByID(ctx, schema.KindSkill, id)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Scales"}`, string(got))
}

func TestRecordRepositoryInsertCallerAssignedID(t *testing.T) {
	repo := NewRecordRepository(testutil.OpenTestDB(t))
	ctx := context.Background()

	for _, id := range []int64{0, -42, 7} {
		got, err := repo.Insert(ctx, schema.KindSkillGroup, schema.Int64Ptr(id), "g", []byte("{}"))
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
	_, err := repo.GetByID(ctx, schema.KindSkillGroup, 0)
	require.NoError(t, err)
	_, err = repo.GetByID(ctx, schema.KindSkillGroup, -42)
	require.NoError(t, err)
}

func TestRecordRepositoryUpdateAndDeleteNotFound(t *testing.T) {
	repo := NewRecordRepository(testutil.OpenTestDB(t))
	ctx := context.Background()

	err := repo.Update(ctx, schema.KindSchedule, 99, "x", []byte("{}"))
	assert.True(t, errors.Is(err, ErrNotFound), "err=%v", err)

	err = repo.Delete(ctx, schema.KindSchedule, 99)
	assert.True(t, errors.Is(err, ErrNotFound), "err=%v", err)

	_, err = repo.GetByID(ctx, schema.KindSchedule, 99)
	assert.True(t, errors.Is(err, ErrNotFound), "err=%v", err)
}

func TestRecordRepositoryUpdate(t *testing.T) {
	repo := NewRecordRepository(testutil.OpenTestDB(t))
	ctx := context.Background()

	id, err := repo.Insert(ctx, schema.KindSkill, nil, "A", []byte("1"))
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, schema.KindSkill, id, "B", []byte("2")))

	got, err := repo.GetByID(ctx, schema.KindSkill, id)
	require.NoError(t, err)
	assert.Equal(t, "2", string(got))

	exists, err := repo.ExistsWithName(ctx, schema.KindSkill, "A")
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = repo.ExistsWithName(ctx, schema.KindSkill, "B")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRecordRepositoryListAllOrderedByName(t *testing.T) {
	repo := NewRecordRepository(testutil.OpenTestDB(t))
	ctx := context.Background()

	idB, err := repo.Insert(ctx, schema.KindSkill, nil, "B", []byte("b"))
	require.NoError(t, err)
	idA, err := repo.Insert(ctx, schema.KindSkill, nil, "A", []byte("a"))
	require.NoError(t, err)

	recs, err := repo.ListAll(ctx, schema.KindSkill)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, idA, recs[0].ID)
	assert.Equal(t, idB, recs[1].ID)

	var seen []string
	err = repo.ForEach(ctx, schema.KindSkill, func(rec schema.Record) error {
		seen = append(seen, rec.Name+":"+string(rec.Payload))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A:a", "B:b"}, seen)
}

func TestRecordRepositoryForEachStopsOnError(t *testing.T) {
	repo := NewRecordRepository(testutil.OpenTestDB(t))
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C"} {
		_, err := repo.Insert(ctx, schema.KindSkill, nil, name, []byte("{}"))
		require.NoError(t, err)
	}

	stop := errors.New("stop")
	calls := 0
	err := repo.ForEach(ctx, schema.KindSkill, func(rec schema.Record) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, calls)
}

func TestRecordRepositoryTransactionRollsBack(t *testing.T) {
	repo := NewRecordRepository(testutil.OpenTestDB(t))
	ctx := context.Background()

	boom := errors.New("boom")
	err := repo.Transaction(ctx, func(tx RecordStore) error {
		if _, err := tx.Insert(ctx, schema.KindSkill, nil, "A", []byte("{}")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	recs, err := repo.ListAll(ctx, schema.KindSkill)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecordRepositoryClear(t *testing.T) {
	repo := NewRecordRepository(testutil.OpenTestDB(t))
	ctx := context.Background()

	_, err := repo.Insert(ctx, schema.KindSkill, nil, "A", []byte("{}"))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, schema.KindSkillGroup, schema.Int64Ptr(1), "G", []byte("{}"))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, schema.KindSchedule, nil, "S", []byte("{}"))
	require.NoError(t, err)

	require.NoError(t, repo.Clear(ctx))
	for _, kind := range []schema.RecordKind{schema.KindSkill, schema.KindSkillGroup, schema.KindSchedule} {
		recs, err := repo.ListAll(ctx, kind)
		require.NoError(t, err)
		assert.Empty(t, recs, kind.String())
	}
}
