package memory

import (
	"context"
	"sort"
	"sync"

	"castfeed-backend/domain/comment"
	"castfeed-backend/pkg/common"
	pkgerrors "castfeed-backend/pkg/errors"
)

// InMemoryCommentRepository provides an in-memory CommentRepository
type InMemoryCommentRepository struct {
	mu       sync.RWMutex
	comments map[string]*comment.Comment
}

// NewInMemoryCommentRepository creates a new in-memory comment repository
func NewInMemoryCommentRepository() *InMemoryCommentRepository {
	return &InMemoryCommentRepository{
		comments: make(map[string]*comment.Comment),
	}
}

// Save stores a detached copy of the comment
func (r *InMemoryCommentRepository) Save(ctx context.Context, c *comment.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.comments[c.ID()] = cloneComment(c)
	return nil
}

// FindByID returns the comment, including tombstones
func (r *InMemoryCommentRepository) FindByID(ctx context.Context, id string) (*comment.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.comments[id]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("comment")
	}
	return cloneComment(c), nil
}

// FindByContent returns the top-level comments of a post, paged. Tombstoned
// comments are included so threads keep their shape.
func (r *InMemoryCommentRepository) FindByContent(ctx context.Context, contentID string, page common.PaginationParams) ([]*comment.Comment, int, error) {
	return r.findWhere(func(c *comment.Comment) bool {
		return c.ContentID() == contentID && !c.IsReply()
	}, page)
}

// FindReplies returns the replies under a comment, paged
func (r *InMemoryCommentRepository) FindReplies(ctx context.Context, parentID string, page common.PaginationParams) ([]*comment.Comment, int, error) {
	return r.findWhere(func(c *comment.Comment) bool {
		return c.ParentID() == parentID
	}, page)
}

// Delete removes a comment outright
func (r *InMemoryCommentRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.comments, id)
	return nil
}

// CountByContent counts the live comments and replies on a post
func (r *InMemoryCommentRepository) CountByContent(ctx context.Context, contentID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, c := range r.comments {
		if c.ContentID() == contentID && !c.IsDeleted() {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryCommentRepository) findWhere(match func(*comment.Comment) bool, page common.PaginationParams) ([]*comment.Comment, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*comment.Comment
	for _, c := range r.comments {
		if match(c) {
			matched = append(matched, c)
		}
	}

	asc := page.Order == "asc"
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var before bool
		if page.SortBy == "createdAt" {
			if a.CreatedAt().Equal(b.CreatedAt()) {
				before = a.ID() < b.ID()
			} else {
				before = a.CreatedAt().Before(b.CreatedAt())
			}
		} else {
			if a.UpdatedAt().Equal(b.UpdatedAt()) {
				before = a.ID() < b.ID()
			} else {
				before = a.UpdatedAt().Before(b.UpdatedAt())
			}
		}
		if asc {
			return before
		}
		return !before
	})

	total := len(matched)
	offset := page.Offset()
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + page.Limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*comment.Comment, 0, end-offset)
	for _, c := range matched[offset:end] {
		out = append(out, cloneComment(c))
	}
	return out, total, nil
}

func cloneComment(c *comment.Comment) *comment.Comment {
	return comment.Reconstruct(
		c.ID(),
		c.ContentID(),
		c.ParentID(),
		c.AuthorID(),
		c.Message(),
		c.Likes(),
		c.ReplyCount(),
		c.IsDeleted(),
		c.CreatedAt(),
		c.UpdatedAt(),
	)
}
