package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportDemoSeed(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	stats, err := svc.ImportSeed(ctx, strings.NewReader(DemoSeed))
	require.NoError(t, err)
	assert.Equal(t, SeedStats{Groups: 3, Skills: 2, Schedules: 1}, stats)

	ok, err := svc.IsAncestorOf(0, -1)
	require.NoError(t, err)
	assert.True(t, ok)

	skills, err := svc.ListSkills(ctx)
	require.NoError(t, err)
	require.Len(t, skills, 2)
	assert.Equal(t, "Carcassi Op. 60 No. 7", skills[0].Name)
	assert.Equal(t, []int64{1}, skills[0].GroupIDs)
	require.NotNil(t, skills[1].DateLastPracticed)
	assert.Equal(t, testNow.Unix()-7*3600, *skills[1].DateLastPracticed)

	schedules, err := svc.ListSchedules(ctx)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, 1500, schedules[0].TotalSeconds())
	assert.Equal(t, int64(0), *schedules[0].Slots[0].GroupID)
}

func TestImportSeedResolvesOutOfOrderParents(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	doc := `
groups:
  - name: leaf
    parents: [mid]
  - name: mid
    parents: [root]
  - name: root
`
	stats, err := svc.ImportSeed(ctx, strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Groups)

	ok, err := svc.IsAncestorOf(GroupIDForName("root"), GroupIDForName("leaf"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestImportSeedErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		doc  string
	}{
		{"unknown parent", "groups:\n  - name: a\n    parents: [missing]\n"},
		{"unknown skill group", "skills:\n  - name: s\n    groups: [missing]\n"},
		{"unknown slot group", "schedules:\n  - name: d\n    slots:\n      - group: missing\n        minutes: 5\n"},
		{"cyclic parents", "groups:\n  - name: a\n    parents: [b]\n  - name: b\n    parents: [a]\n"},
		{"duplicate group", "groups:\n  - name: a\n  - name: a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, nil)
			_, err := svc.ImportSeed(ctx, strings.NewReader(tt.doc))
			assert.True(t, errors.Is(err, ErrValidation), "err=%v", err)
		})
	}

	svc, _ := newTestService(t, nil)
	_, err := svc.ImportSeed(ctx, strings.NewReader("groups: [unknown: {"))
	assert.Error(t, err)
}

func TestParseSeedEmpty(t *testing.T) {
	doc, err := ParseSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, doc.Groups)
}
