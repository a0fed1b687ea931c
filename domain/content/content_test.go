package content

import (
	"testing"

	"castfeed-backend/domain/engagement"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Short(t *testing.T) {
	c, err := New("", "user123", TypeShort, Payload{Message: "hello #World"})

	require.NoError(t, err)
	assert.NotEmpty(t, c.ID())
	assert.Equal(t, "user123", c.AuthorID())
	assert.Equal(t, TypeShort, c.Type())
	assert.Equal(t, []string{"world"}, c.Hashtags())
	assert.Equal(t, 1, c.RevisionCount())
	assert.False(t, c.IsDeleted())
	assert.Len(t, c.GetUncommittedEvents(), 1)
}

func TestNew_KeepsCallerID(t *testing.T) {
	c, err := New("content-1", "user123", TypeShort, Payload{Message: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "content-1", c.ID())
}

func TestNew_RejectsInvalidPayload(t *testing.T) {
	tests := []struct {
		name        string
		contentType Type
		payload     Payload
	}{
		{"short without message", TypeShort, Payload{}},
		{"blog without header", TypeBlog, Payload{Message: "body"}},
		{"image without photos", TypeImage, Payload{Message: "caption"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("", "user123", tt.contentType, tt.payload)
			assert.Error(t, err)
		})
	}
}

func TestNew_RejectsDerivedTypes(t *testing.T) {
	_, err := New("", "user123", TypeRecast, Payload{})
	assert.Error(t, err)
}

func TestNewRecast(t *testing.T) {
	original, err := New("", "author", TypeShort, Payload{Message: "source"})
	require.NoError(t, err)

	recast, err := NewRecast("", "fan", original.Snapshot())

	require.NoError(t, err)
	assert.True(t, recast.IsRecast())
	assert.Equal(t, original.ID(), recast.OriginalRef().ID)
	assert.Equal(t, Payload{}, recast.Payload())
}

func TestNewRecast_TombstonedSource(t *testing.T) {
	original, err := New("", "author", TypeShort, Payload{Message: "source"})
	require.NoError(t, err)
	require.NoError(t, original.SoftDelete())

	_, err = NewRecast("", "fan", original.Snapshot())

	assert.Error(t, err)
}

func TestNewQuote_RequiresCommentary(t *testing.T) {
	original, err := New("", "author", TypeShort, Payload{Message: "source"})
	require.NoError(t, err)

	_, err = NewQuote("", "fan", Payload{}, original.Snapshot())
	assert.Error(t, err)

	quote, err := NewQuote("", "fan", Payload{Message: "look at this"}, original.Snapshot())
	require.NoError(t, err)
	assert.True(t, quote.IsQuote())
}

func TestUpdatePayload_GrowsRevision(t *testing.T) {
	c, err := New("", "user123", TypeShort, Payload{Message: "v1"})
	require.NoError(t, err)

	require.NoError(t, c.UpdatePayload(Payload{Message: "v2"}))

	assert.Equal(t, 2, c.RevisionCount())
	assert.Equal(t, "v2", c.Payload().Message)
	rev := c.CurrentRevision()
	assert.Equal(t, 2, rev.Seq)
	assert.Equal(t, "v2", rev.Payload.Message)
}

func TestUpdatePayload_RecastNotEditable(t *testing.T) {
	original, err := New("", "author", TypeShort, Payload{Message: "source"})
	require.NoError(t, err)
	recast, err := NewRecast("", "fan", original.Snapshot())
	require.NoError(t, err)

	err = recast.UpdatePayload(Payload{Message: "sneaky edit"})

	assert.Error(t, err)
	assert.Equal(t, 1, recast.RevisionCount())
}

func TestUpdatePayload_RefreshesHashtags(t *testing.T) {
	c, err := New("", "user123", TypeShort, Payload{Message: "about #go"})
	require.NoError(t, err)

	require.NoError(t, c.UpdatePayload(Payload{Message: "now about #rust"}))

	assert.Equal(t, []string{"rust"}, c.Hashtags())
}

func TestSoftDelete(t *testing.T) {
	c, err := New("", "user123", TypeShort, Payload{Message: "bye"})
	require.NoError(t, err)

	require.NoError(t, c.SoftDelete())

	assert.True(t, c.IsDeleted())
	snap := c.Snapshot()
	assert.True(t, snap.Tombstoned)
	assert.Equal(t, Payload{}, snap.Payload)

	// deleting twice surfaces as missing
	assert.Error(t, c.SoftDelete())
	assert.Error(t, c.UpdatePayload(Payload{Message: "zombie"}))
}

func TestApplyEngagement_Idempotent(t *testing.T) {
	c, err := New("", "user123", TypeShort, Payload{Message: "likeable"})
	require.NoError(t, err)

	c.ApplyEngagement(engagement.KindLike, "fan1")
	c.ApplyEngagement(engagement.KindLike, "fan1")
	c.ApplyEngagement(engagement.KindLike, "fan2")

	assert.Equal(t, 2, c.EngagementCount(engagement.KindLike))
	assert.True(t, c.EngagedBy(engagement.KindLike, "fan1"))

	c.RetractEngagement(engagement.KindLike, "fan1")
	c.RetractEngagement(engagement.KindLike, "fan1")

	assert.Equal(t, 1, c.EngagementCount(engagement.KindLike))
	assert.False(t, c.EngagedBy(engagement.KindLike, "fan1"))
}

func TestApplyEngagementOccurrence_CountsEveryOccurrence(t *testing.T) {
	c, err := New("", "user123", TypeShort, Payload{Message: "quotable"})
	require.NoError(t, err)

	c.ApplyEngagementOccurrence(engagement.KindQuote, "fan1")
	c.ApplyEngagementOccurrence(engagement.KindQuote, "fan1")

	assert.Equal(t, 2, c.EngagementCount(engagement.KindQuote))

	c.RetractEngagementOccurrence(engagement.KindQuote)
	assert.Equal(t, 1, c.EngagementCount(engagement.KindQuote))

	// never drops below zero
	c.RetractEngagementOccurrence(engagement.KindQuote)
	c.RetractEngagementOccurrence(engagement.KindQuote)
	assert.Equal(t, 0, c.EngagementCount(engagement.KindQuote))
}

func TestMarkOriginalTombstoned(t *testing.T) {
	original, err := New("", "author", TypeShort, Payload{Message: "source"})
	require.NoError(t, err)
	quote, err := NewQuote("", "fan", Payload{Message: "ref"}, original.Snapshot())
	require.NoError(t, err)

	quote.MarkOriginalTombstoned()

	assert.True(t, quote.OriginalRef().Tombstoned)
	assert.Equal(t, Payload{}, quote.OriginalRef().Payload)
}
