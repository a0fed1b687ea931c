package memory

import (
	"context"
	"sync"

	"castfeed-backend/domain/engagement"
	pkgerrors "castfeed-backend/pkg/errors"
)

// InMemoryEngagementRepository provides an in-memory EngagementRepository.
// Uniqueness is enforced on the record's uniqueness key, mirroring the
// conditional writes the DynamoDB implementation uses.
type InMemoryEngagementRepository struct {
	mu      sync.RWMutex
	records map[string]*engagement.Engagement
	byKey   map[string]string
}

// NewInMemoryEngagementRepository creates a new in-memory engagement repository
func NewInMemoryEngagementRepository() *InMemoryEngagementRepository {
	return &InMemoryEngagementRepository{
		records: make(map[string]*engagement.Engagement),
		byKey:   make(map[string]string),
	}
}

// Save stores a record, rejecting duplicates of the same uniqueness key
func (r *InMemoryEngagementRepository) Save(ctx context.Context, e *engagement.Engagement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := e.UniquenessKey()
	if _, exists := r.byKey[key]; exists {
		return pkgerrors.NewConflictError("engagement already recorded")
	}

	record := *e
	r.records[e.ID] = &record
	r.byKey[key] = e.ID
	return nil
}

// Find returns the user's record of one kind against a target
func (r *InMemoryEngagementRepository) Find(ctx context.Context, userID, targetID string, kind engagement.Kind) (*engagement.Engagement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.records {
		if record.UserID == userID && record.TargetID == targetID && record.Kind == kind {
			out := *record
			return &out, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("engagement")
}

// FindByRef returns the record tied to a derived post
func (r *InMemoryEngagementRepository) FindByRef(ctx context.Context, targetID, refID string) (*engagement.Engagement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.records {
		if record.TargetID == targetID && record.RefID == refID {
			out := *record
			return &out, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("engagement")
}

// Delete removes a record by id. Deleting an absent record is a no-op.
func (r *InMemoryEngagementRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[id]
	if !exists {
		return nil
	}
	delete(r.byKey, record.UniquenessKey())
	delete(r.records, id)
	return nil
}

// FindByTarget returns every record against a target
func (r *InMemoryEngagementRepository) FindByTarget(ctx context.Context, targetID string) ([]*engagement.Engagement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*engagement.Engagement
	for _, record := range r.records {
		if record.TargetID == targetID {
			copied := *record
			out = append(out, &copied)
		}
	}
	return out, nil
}

// CountByTarget counts records of one kind against a target
func (r *InMemoryEngagementRepository) CountByTarget(ctx context.Context, targetID string, kind engagement.Kind) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, record := range r.records {
		if record.TargetID == targetID && record.Kind == kind {
			count++
		}
	}
	return count, nil
}
