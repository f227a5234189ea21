package fencer_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmadfox/fencer"
	mockfencer "github.com/mmadfox/fencer/mocks/fencer"
)

var triangle = []fencer.Point{
	fencer.NewPoint(19.94, 50.05),
	fencer.NewPoint(19.97, 50.05),
	fencer.NewPoint(19.97, 50.07),
}

func TestRegistry_LoadRemoteUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mockfencer.NewMockStore(ctrl)
	store.EXPECT().Fetch(gomock.Any()).Return(nil, errors.New("connection refused"))

	registry := fencer.NewRegistry(store)
	id, err := registry.Create(triangle)
	require.NoError(t, err)

	polygons, err := registry.Load(ctx)
	assert.ErrorIs(t, err, fencer.ErrRemoteUnavailable)
	assert.Nil(t, polygons)
	assert.Equal(t, fencer.Unsynced, registry.State())

	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, id, snapshot[0].ID)
}

func TestRegistry_LoadFirstFailureLeavesEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mockfencer.NewMockStore(ctrl)
	store.EXPECT().Fetch(gomock.Any()).Return([]byte(`{"polygon":[{"id":"x"}]}`), nil)

	registry := fencer.NewRegistry(store)
	_, err := registry.Load(context.Background())
	assert.ErrorIs(t, err, fencer.ErrMalformedData)
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_LoadKeepsWrappedRemoteErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mockfencer.NewMockStore(ctrl)
	store.EXPECT().Fetch(gomock.Any()).Return(nil, fmt.Errorf("%w: status 503", fencer.ErrRemoteUnavailable))

	registry := fencer.NewRegistry(store)
	_, err := registry.Load(context.Background())
	assert.ErrorIs(t, err, fencer.ErrRemoteUnavailable)
	assert.Contains(t, err.Error(), "status 503")
}

func TestRegistry_CommitFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mockfencer.NewMockStore(ctrl)
	store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(errors.New("timeout"))

	registry := fencer.NewRegistry(store)
	_, err := registry.Create(triangle)
	require.NoError(t, err)
	before := registry.Snapshot()

	err = registry.Commit(ctx)
	assert.ErrorIs(t, err, fencer.ErrRemoteUnavailable)
	assert.Equal(t, fencer.Unsynced, registry.State())
	assert.Equal(t, before, registry.Snapshot())
}

func TestRegistry_CommitSendsSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mockfencer.NewMockStore(ctrl)

	registry := fencer.NewRegistry(store)
	id, err := registry.Create(triangle)
	require.NoError(t, err)

	store.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, data []byte) error {
			polygons, err := fencer.DecodeDocument(data)
			assert.NoError(t, err)
			assert.Len(t, polygons, 1)
			assert.Equal(t, id, polygons[0].ID)
			return nil
		}).Times(1)

	assert.NoError(t, registry.Commit(ctx))
	assert.Equal(t, fencer.Synced, registry.State())
	assert.Equal(t, 1, registry.Len())
}
