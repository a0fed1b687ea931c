package engagement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds() {
		parsed, err := ParseKind(string(kind))
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseKind("wave")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	e, err := New("fan1", "content-1", KindLike)

	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "fan1", e.UserID)
	assert.Equal(t, "content-1", e.TargetID)
	assert.Equal(t, KindLike, e.Kind)
	assert.Empty(t, e.RefID)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestNew_RejectsBlanks(t *testing.T) {
	_, err := New("", "content-1", KindLike)
	assert.Error(t, err)

	_, err = New("fan1", "", KindLike)
	assert.Error(t, err)

	_, err = New("fan1", "content-1", Kind("wave"))
	assert.Error(t, err)
}

func TestUniquenessKey(t *testing.T) {
	like, err := New("fan1", "content-1", KindLike)
	require.NoError(t, err)
	sameLike, err := New("fan1", "content-1", KindLike)
	require.NoError(t, err)
	otherUser, err := New("fan2", "content-1", KindLike)
	require.NoError(t, err)

	// same user, target and kind collide; ids differ
	assert.Equal(t, like.UniquenessKey(), sameLike.UniquenessKey())
	assert.NotEqual(t, like.ID, sameLike.ID)
	assert.NotEqual(t, like.UniquenessKey(), otherUser.UniquenessKey())
}

func TestUniquenessKey_RefSeparatesQuotes(t *testing.T) {
	first, err := NewWithRef("fan1", "content-1", KindQuote, "quote-1")
	require.NoError(t, err)
	second, err := NewWithRef("fan1", "content-1", KindQuote, "quote-2")
	require.NoError(t, err)

	assert.NotEqual(t, first.UniquenessKey(), second.UniquenessKey())
}

func TestSummary_AddIsIdempotent(t *testing.T) {
	var s Summary

	s = s.Add("fan1")
	s = s.Add("fan1")
	s = s.Add("fan2")

	assert.Equal(t, 2, s.Count)
	assert.True(t, s.Engaged("fan1"))
	assert.True(t, s.Engaged("fan2"))
}

func TestSummary_AddOccurrenceIsNot(t *testing.T) {
	var s Summary

	s = s.AddOccurrence("fan1")
	s = s.AddOccurrence("fan1")

	assert.Equal(t, 2, s.Count)
	assert.Len(t, s.Participants, 1)
}

func TestSummary_RemoveFloorsAtZero(t *testing.T) {
	var s Summary

	s = s.Remove("ghost")
	assert.Equal(t, 0, s.Count)

	s = s.Add("fan1")
	s = s.Remove("fan1")
	assert.Equal(t, 0, s.Count)
	assert.False(t, s.Engaged("fan1"))
}

func TestSummary_RemoveOccurrenceKeepsParticipant(t *testing.T) {
	var s Summary
	s = s.AddOccurrence("fan1")
	s = s.AddOccurrence("fan1")

	s = s.RemoveOccurrence()

	assert.Equal(t, 1, s.Count)
	assert.True(t, s.Engaged("fan1"))

	s = s.RemoveOccurrence()
	s = s.RemoveOccurrence()
	assert.Equal(t, 0, s.Count)
}

func TestSummary_CopyOnWrite(t *testing.T) {
	var base Summary
	base = base.Add("fan1")

	forked := base.Add("fan2")

	assert.Equal(t, 1, base.Count)
	assert.Equal(t, 2, forked.Count)
	assert.False(t, base.Engaged("fan2"))
}
