package service

import (
	"context"
	"strings"
	"testing"

	"github.com/avvvet/hobheap-services/internal/notesvc/models"
	"github.com/avvvet/hobheap-services/internal/notesvc/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagNames(tags []*models.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Name
	}
	return out
}

func cardIDs(cards []*models.Card) []int64 {
	out := make([]int64, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestCreateTag_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	s := NewTagService(store.NewMemoryManager(), &recordingPublisher{})

	first, err := s.CreateTag(ctx, "alpha", true)
	require.NoError(t, err)
	again, err := s.CreateTag(ctx, " alpha ", false)
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.True(t, again.IsAIGenerated, "existing tag is returned unchanged")

	tags, err := s.ListTags(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestCreateTag_Validation(t *testing.T) {
	s := NewTagService(store.NewMemoryManager(), &recordingPublisher{})

	_, err := s.CreateTag(context.Background(), "   ", false)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.CreateTag(context.Background(), strings.Repeat("x", models.MaxTagNameLength+1), false)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// the limit counts characters, not bytes
	tag, err := s.CreateTag(context.Background(), strings.Repeat("ü", models.MaxTagNameLength), false)
	require.NoError(t, err)
	assert.Equal(t, models.MaxTagNameLength, len([]rune(tag.Name)))
	_, err = s.CreateTag(context.Background(), strings.Repeat("ü", models.MaxTagNameLength+1), false)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAssignTags_Idempotent(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryManager()
	cards := NewCardService(m, &recordingPublisher{})
	s := NewTagService(m, &recordingPublisher{})
	u := mustRegister(t, m, "a@example.com")

	c, err := cards.CreateCard(ctx, u.ID, CardInput{ContentMD: "x"})
	require.NoError(t, err)

	res, err := s.AssignTags(ctx, u.ID, c.ID, []string{"beta", "alpha", "beta"})
	require.NoError(t, err)
	assert.Equal(t, c.ID, res.CardID)
	assert.Equal(t, []string{"beta", "alpha"}, tagNames(res.Tags))

	res, err = s.AssignTags(ctx, u.ID, c.ID, []string{"alpha"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, tagNames(res.Tags))

	all, err := s.ListTags(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAssignTags_ReturnsRequestedTagsInOrder(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryManager()
	cards := NewCardService(m, &recordingPublisher{})
	s := NewTagService(m, &recordingPublisher{})
	u := mustRegister(t, m, "a@example.com")

	c, err := cards.CreateCard(ctx, u.ID, CardInput{ContentMD: "x"})
	require.NoError(t, err)

	res, err := s.AssignTags(ctx, u.ID, c.ID, []string{"zeta", "alpha"})
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha"}, tagNames(res.Tags))

	res, err = s.AssignTags(ctx, u.ID, c.ID, []string{"beta"})
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, tagNames(res.Tags))
	for _, tag := range res.Tags {
		assert.NotZero(t, tag.ID)
	}

	// earlier tags stay linked
	all, err := s.CardTags(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "zeta"}, tagNames(all))

	other := mustRegister(t, m, "b@example.com")
	_, err = s.CardTags(ctx, other.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignTags_FilterCards(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryManager()
	cards := NewCardService(m, &recordingPublisher{})
	s := NewTagService(m, &recordingPublisher{})
	u := mustRegister(t, m, "a@example.com")

	c1, err := cards.CreateCard(ctx, u.ID, CardInput{ContentMD: "one"})
	require.NoError(t, err)
	c2, err := cards.CreateCard(ctx, u.ID, CardInput{ContentMD: "two"})
	require.NoError(t, err)

	_, err = s.AssignTags(ctx, u.ID, c1.ID, []string{"alpha", "beta"})
	require.NoError(t, err)
	_, err = s.AssignTags(ctx, u.ID, c2.ID, []string{"beta", "gamma"})
	require.NoError(t, err)

	for tag, want := range map[string][]int64{
		"alpha": {c1.ID},
		"beta":  {c1.ID, c2.ID},
		"gamma": {c2.ID},
		"delta": {},
	} {
		got, err := cards.ListCards(ctx, u.ID, models.CardFilter{Tag: tag})
		require.NoError(t, err)
		assert.Equal(t, want, cardIDs(got), tag)
	}
}

func TestAssignTags_NotFound(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryManager()
	cards := NewCardService(m, &recordingPublisher{})
	events := &recordingPublisher{}
	s := NewTagService(m, events)
	owner := mustRegister(t, m, "a@example.com")
	other := mustRegister(t, m, "b@example.com")

	c, err := cards.CreateCard(ctx, owner.ID, CardInput{ContentMD: "x"})
	require.NoError(t, err)

	_, err = s.AssignTags(ctx, other.ID, c.ID, []string{"alpha"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.AssignTags(ctx, owner.ID, 999, []string{"alpha"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, cards.DeleteCard(ctx, owner.ID, c.ID))
	_, err = s.AssignTags(ctx, owner.ID, c.ID, []string{"alpha"})
	assert.ErrorIs(t, err, ErrNotFound)

	tags, err := s.ListTags(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, tags, "rejected assignments create no tags")
	assert.Empty(t, events.types())
}
