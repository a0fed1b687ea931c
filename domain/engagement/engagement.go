package engagement

import (
	"time"

	pkgerrors "castfeed-backend/pkg/errors"

	"github.com/google/uuid"
)

// Kind enumerates the reaction kinds the ledger tracks. The set is closed:
// persistence and view shaping key off these values, so a new kind is a
// schema change, not a runtime string.
type Kind string

const (
	KindLike    Kind = "like"
	KindComment Kind = "comment"
	KindRecast  Kind = "recast"
	KindQuote   Kind = "quote"
)

// Kinds lists every engagement kind, in ledger order
func Kinds() []Kind {
	return []Kind{KindLike, KindComment, KindRecast, KindQuote}
}

// Valid reports whether k is a known engagement kind
func (k Kind) Valid() bool {
	switch k {
	case KindLike, KindComment, KindRecast, KindQuote:
		return true
	}
	return false
}

// ParseKind converts a string into a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", pkgerrors.NewValidationError("unknown engagement kind: " + s)
	}
	return k, nil
}

// Engagement records one user's reaction of one kind against one target.
// The target is a content id for like/recast/quote, or a comment id for
// comment likes. RefID is set when the reaction is embodied by a derived
// post (the recast or quote content id); it keeps multiple quotes of the
// same original by one user distinct. These records are the authoritative
// set; the per-target counters are cached aggregates derived from them.
type Engagement struct {
	ID        string
	UserID    string
	TargetID  string
	Kind      Kind
	RefID     string
	CreatedAt time.Time
}

// New creates an engagement record
func New(userID, targetID string, kind Kind) (*Engagement, error) {
	return NewWithRef(userID, targetID, kind, "")
}

// NewWithRef creates an engagement record tied to a derived post
func NewWithRef(userID, targetID string, kind Kind, refID string) (*Engagement, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if targetID == "" {
		return nil, pkgerrors.NewValidationError("targetID cannot be empty")
	}
	if !kind.Valid() {
		return nil, pkgerrors.NewValidationError("unknown engagement kind: " + string(kind))
	}

	return &Engagement{
		ID:        uuid.New().String(),
		UserID:    userID,
		TargetID:  targetID,
		Kind:      kind,
		RefID:     refID,
		CreatedAt: time.Now(),
	}, nil
}

// UniquenessKey is the storage key that makes duplicate reactions collide.
// Likes and recasts carry no ref, so one record per (user, target, kind);
// quotes include the derived post id, so each quote is its own record.
func (e *Engagement) UniquenessKey() string {
	return e.UserID + "#" + e.TargetID + "#" + string(e.Kind) + "#" + e.RefID
}

// Summary is the cached per-kind aggregate kept on the target: a count plus
// the participating user ids. It is advisory for read performance; the
// record set above is the source of truth.
type Summary struct {
	Count        int      `json:"count"`
	Participants []string `json:"participants,omitempty"`
}

// Engaged reports whether userID appears in the participant set
func (s Summary) Engaged(userID string) bool {
	for _, p := range s.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Add registers a participant and bumps the count
func (s Summary) Add(userID string) Summary {
	if s.Engaged(userID) {
		return s
	}
	s.Participants = append(append([]string{}, s.Participants...), userID)
	s.Count++
	return s
}

// AddOccurrence bumps the count and records the participant. Unlike Add it
// is not idempotent per user; comment and quote counts grow with every
// occurrence even from the same user.
func (s Summary) AddOccurrence(userID string) Summary {
	if !s.Engaged(userID) {
		s.Participants = append(append([]string{}, s.Participants...), userID)
	}
	s.Count++
	return s
}

// RemoveOccurrence decrements the count, floored at zero. The participant
// entry is left in place; the cache is advisory and reconciliation settles
// whether the user still has occurrences.
func (s Summary) RemoveOccurrence() Summary {
	if s.Count > 0 {
		s.Count--
	}
	return s
}

// Remove drops a participant and decrements the count, floored at zero
func (s Summary) Remove(userID string) Summary {
	kept := make([]string, 0, len(s.Participants))
	for _, p := range s.Participants {
		if p != userID {
			kept = append(kept, p)
		}
	}
	s.Participants = kept
	if s.Count > 0 {
		s.Count--
	}
	return s
}
