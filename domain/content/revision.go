package content

import "time"

// Revision is an immutable snapshot of a content payload at one point in
// its edit history. Seq is 1 for the snapshot taken at creation and grows
// by one per update; revisions are never rewritten or pruned.
type Revision struct {
	ContentID string    `json:"content_id"`
	Seq       int       `json:"seq"`
	Payload   Payload   `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}
