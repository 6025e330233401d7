package models

import (
	"encoding/json"
	"time"

	"github.com/sitewise/backend/pkg/constants"
)

// Site is the tenant container; pages and collections belong to a site
type Site struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Page is a builder document. Its content lives in revisions; the row tracks
// publish state and the published pointer.
type Page struct {
	ID                  string                   `json:"id"`
	SiteID              string                   `json:"site_id"`
	Slug                string                   `json:"slug"`
	Title               string                   `json:"title"`
	Status              constants.DocumentStatus `json:"status"`
	LatestVersion       int                      `json:"latest_version"`
	PublishedRevisionID *string                  `json:"published_revision_id,omitempty"`
	PublishedAt         *time.Time               `json:"published_at,omitempty"`
	CreatedAt           time.Time                `json:"created_at"`
	UpdatedAt           time.Time                `json:"updated_at"`
}

// CollectionField describes one field of a collection schema. Key is unique
// within the collection and is the join key into item data.
type CollectionField struct {
	Key         string                        `json:"key"`
	Label       string                        `json:"label"`
	Type        constants.CollectionFieldType `json:"type"`
	Required    bool                          `json:"required,omitempty"`
	Options     []string                      `json:"options,omitempty"`
	Description *string                       `json:"description,omitempty"`
}

// Collection is a structured content type (posts, products, ...). Fields are
// embedded on the collection row as JSON, not a separate table.
type Collection struct {
	ID        string            `json:"id"`
	SiteID    string            `json:"site_id"`
	Slug      string            `json:"slug"`
	Name      string            `json:"name"`
	Fields    []CollectionField `json:"fields"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// FieldByKey returns the schema field with the given key, if present
func (c *Collection) FieldByKey(key string) (CollectionField, bool) {
	for _, f := range c.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return CollectionField{}, false
}

// CollectionItem is a structured record inside a collection
type CollectionItem struct {
	ID                  string                   `json:"id"`
	CollectionID        string                   `json:"collection_id"`
	Status              constants.DocumentStatus `json:"status"`
	LatestVersion       int                      `json:"latest_version"`
	PublishedRevisionID *string                  `json:"published_revision_id,omitempty"`
	PublishedAt         *time.Time               `json:"published_at,omitempty"`
	CreatedAt           time.Time                `json:"created_at"`
	UpdatedAt           time.Time                `json:"updated_at"`
}

// Revision is one immutable snapshot of a document's content. The same shape
// backs page revisions and collection item revisions; Content holds the full
// snapshot, never a diff.
type Revision struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"document_id"`
	Version    int             `json:"version"`
	Content    json.RawMessage `json:"content"`
	Note       *string         `json:"note,omitempty"`
	CreatedBy  string          `json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ValidationRule is an expr-lang predicate enforced on item saves. A rule
// whose Condition evaluates to false blocks the write with ErrorMessage.
type ValidationRule struct {
	ID           string `json:"id"`
	CollectionID string `json:"collection_id"`
	Name         string `json:"name"`
	Active       bool   `json:"active"`
	Condition    string `json:"condition"`
	ErrorMessage string `json:"error_message"`
}

// ScheduledPublish queues a future publish of a document. Either PublishAt
// (one-shot) or Schedule (cron expression, recurring) is set, never both.
type ScheduledPublish struct {
	ID           string     `json:"id"`
	DocumentType string     `json:"document_type"` // page | item
	DocumentID   string     `json:"document_id"`
	PublishAt    *time.Time `json:"publish_at,omitempty"`
	Schedule     *string    `json:"schedule,omitempty"`
	LastRunAt    *time.Time `json:"last_run_at,omitempty"`
	CreatedBy    string     `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Scheduled document types
const (
	DocumentTypePage = "page"
	DocumentTypeItem = "item"
)
