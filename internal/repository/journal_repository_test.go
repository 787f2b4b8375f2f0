package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJournalDisabledWhenNoDatabase(t *testing.T) {
	var nilRepo *JournalRepo
	require.ErrorIs(t, nilRepo.Insert(context.Background(), JournalRecord{}), ErrJournalDisabled)

	repo := NewJournalRepo(nil)
	require.ErrorIs(t, repo.Insert(context.Background(), JournalRecord{}), ErrJournalDisabled)
	_, err := repo.ListRecent(context.Background(), 10)
	require.ErrorIs(t, err, ErrJournalDisabled)
}

func TestJoinAndSplitIDs(t *testing.T) {
	require.Equal(t, "42,43,7", joinIDs([]uint64{42, 43, 7}))
	require.Equal(t, "", joinIDs(nil))

	require.Equal(t, []uint64{42, 43, 7}, splitIDs("42,43,7"))
	require.Equal(t, []uint64{42, 7}, splitIDs("42, junk ,7"))
	require.Nil(t, splitIDs(""))
}
