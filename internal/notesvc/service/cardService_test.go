package service

import (
	"context"
	"strings"
	"testing"

	"github.com/avvvet/hobheap-services/internal/comm"
	"github.com/avvvet/hobheap-services/internal/notesvc/models"
	"github.com/avvvet/hobheap-services/internal/notesvc/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func versionNumbers(t *testing.T, s *CardService, ownerID, cardID int64) []int {
	t.Helper()
	versions, err := s.ListVersions(context.Background(), ownerID, cardID)
	require.NoError(t, err)
	out := make([]int, len(versions))
	for i, v := range versions {
		out[i] = v.VersionNumber
	}
	return out
}

func TestCreateCard_StartsAtVersionOne(t *testing.T) {
	m := store.NewMemoryManager()
	events := &recordingPublisher{}
	s := NewCardService(m, events)
	u := mustRegister(t, m, "a@example.com")

	c, err := s.CreateCard(context.Background(), u.ID, CardInput{ContentMD: "# Hello"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTemplateType, c.TemplateType)

	versions, err := s.ListVersions(context.Background(), u.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].VersionNumber)
	assert.Equal(t, "# Hello", versions[0].ContentMD)

	assert.Equal(t, []string{comm.CardCreated}, events.types())
}

func TestUpdateCard_Versioning(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryManager()
	s := NewCardService(m, &recordingPublisher{})
	u := mustRegister(t, m, "a@example.com")

	c, err := s.CreateCard(ctx, u.ID, CardInput{ContentMD: "v1"})
	require.NoError(t, err)

	_, err = s.UpdateCard(ctx, u.ID, c.ID, CardPatch{ContentMD: ptr("v1")})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, versionNumbers(t, s, u.ID, c.ID), "same content adds no version")

	_, err = s.UpdateCard(ctx, u.ID, c.ID, CardPatch{Title: ptr("T"), TemplateType: ptr("flashcard")})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, versionNumbers(t, s, u.ID, c.ID), "metadata changes add no version")

	for _, content := range []string{"v2", "v3"} {
		updated, err := s.UpdateCard(ctx, u.ID, c.ID, CardPatch{ContentMD: ptr(content)})
		require.NoError(t, err)
		assert.Equal(t, content, updated.ContentMD)
	}
	assert.Equal(t, []int{1, 2, 3}, versionNumbers(t, s, u.ID, c.ID))

	got, err := s.GetCard(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "v3", got.ContentMD)
	assert.Equal(t, "T", *got.Title)
	assert.Equal(t, "flashcard", got.TemplateType)
}

func TestUpdateCard_RetriesVersionConflict(t *testing.T) {
	ctx := context.Background()
	m := &conflictManager{MemoryManager: store.NewMemoryManager()}
	events := &recordingPublisher{}
	s := NewCardService(m, events)
	u := mustRegister(t, m, "a@example.com")

	c, err := s.CreateCard(ctx, u.ID, CardInput{ContentMD: "v1"})
	require.NoError(t, err)

	m.failures = versionAttempts - 1
	updated, err := s.UpdateCard(ctx, u.ID, c.ID, CardPatch{ContentMD: ptr("v2")})
	require.NoError(t, err)
	assert.Equal(t, "v2", updated.ContentMD)
	assert.Equal(t, []int{1, 2}, versionNumbers(t, s, u.ID, c.ID))
	assert.Equal(t, []string{comm.CardCreated, comm.CardVersioned}, events.types())
}

func TestUpdateCard_GivesUpAfterRepeatedConflicts(t *testing.T) {
	ctx := context.Background()
	m := &conflictManager{MemoryManager: store.NewMemoryManager()}
	s := NewCardService(m, &recordingPublisher{})
	u := mustRegister(t, m, "a@example.com")

	c, err := s.CreateCard(ctx, u.ID, CardInput{ContentMD: "v1"})
	require.NoError(t, err)

	m.failures = versionAttempts
	_, err = s.UpdateCard(ctx, u.ID, c.ID, CardPatch{ContentMD: ptr("v2")})
	assert.ErrorIs(t, err, ErrVersionConflict)

	got, err := s.GetCard(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", got.ContentMD, "failed update is rolled back")
}

func TestUpdateCard_Validation(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryManager()
	s := NewCardService(m, &recordingPublisher{})
	u := mustRegister(t, m, "a@example.com")
	c, err := s.CreateCard(ctx, u.ID, CardInput{ContentMD: "x"})
	require.NoError(t, err)

	_, err = s.UpdateCard(ctx, u.ID, c.ID, CardPatch{TemplateType: ptr(" ")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	long := make([]byte, maxTitleLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = s.CreateCard(ctx, u.ID, CardInput{Title: ptr(string(long))})
	assert.ErrorIs(t, err, ErrInvalidInput)

	wide, err := s.CreateCard(ctx, u.ID, CardInput{Title: ptr(strings.Repeat("é", maxTitleLength))})
	require.NoError(t, err, "multi-byte titles are measured in characters")
	assert.NotZero(t, wide.ID)
}

func TestCard_OwnershipLooksLikeAbsence(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryManager()
	s := NewCardService(m, &recordingPublisher{})
	owner := mustRegister(t, m, "a@example.com")
	other := mustRegister(t, m, "b@example.com")

	c, err := s.CreateCard(ctx, owner.ID, CardInput{ContentMD: "mine"})
	require.NoError(t, err)

	_, err = s.GetCard(ctx, other.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateCard(ctx, other.ID, c.ID, CardPatch{ContentMD: ptr("theirs")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteCard(ctx, other.ID, c.ID), ErrNotFound)
	_, err = s.ListVersions(ctx, other.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	cards, err := s.ListCards(ctx, other.ID, models.CardFilter{})
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestDeleteCard_HidesCardButKeepsHistory(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryManager()
	s := NewCardService(m, &recordingPublisher{})
	u := mustRegister(t, m, "a@example.com")

	c, err := s.CreateCard(ctx, u.ID, CardInput{ContentMD: "v1"})
	require.NoError(t, err)
	_, err = s.UpdateCard(ctx, u.ID, c.ID, CardPatch{ContentMD: ptr("v2")})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCard(ctx, u.ID, c.ID))

	_, err = s.GetCard(ctx, u.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateCard(ctx, u.ID, c.ID, CardPatch{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteCard(ctx, u.ID, c.ID), ErrNotFound, "second delete")

	cards, err := s.ListCards(ctx, u.ID, models.CardFilter{})
	require.NoError(t, err)
	assert.Empty(t, cards)

	// version listing checks ownership and existence only
	assert.Equal(t, []int{1, 2}, versionNumbers(t, s, u.ID, c.ID))
}

func TestListCards_TemplateFilter(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryManager()
	s := NewCardService(m, &recordingPublisher{})
	u := mustRegister(t, m, "a@example.com")

	plain, err := s.CreateCard(ctx, u.ID, CardInput{ContentMD: "a"})
	require.NoError(t, err)
	_, err = s.CreateCard(ctx, u.ID, CardInput{ContentMD: "b", TemplateType: "checklist"})
	require.NoError(t, err)

	cards, err := s.ListCards(ctx, u.ID, models.CardFilter{TemplateType: "plain"})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, plain.ID, cards[0].ID)
}
