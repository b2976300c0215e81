package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-api/internal/pagination"
	"github.com/aanand-mishra/students-api/internal/storage/memory"
	"github.com/aanand-mishra/students-api/internal/types"
	"github.com/aanand-mishra/students-api/internal/validation"
)

func TestSeed_IsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	v := validation.New(store.ValidID)

	created, skipped, err := seed(ctx, store, v)
	require.NoError(t, err)
	assert.Equal(t, len(samples), created)
	assert.Zero(t, skipped)

	created, skipped, err = seed(ctx, store, v)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, len(samples), skipped)

	_, total, err := store.ListStudents(ctx, types.StudentFilter{}, pagination.Params{Page: 1, Limit: pagination.MaxLimit})
	require.NoError(t, err)
	assert.EqualValues(t, len(samples), total)
}
