package events

import "time"

// Event types broadcast after successful persistence writes. Views subscribe
// by type and re-read the affected collection; the payload is advisory.
const (
	TypeProductCreated = "product.created"
	TypeProductUpdated = "product.updated"
	TypeProductDeleted = "product.deleted"

	TypeArticleCreated = "article.created"
	TypeArticleUpdated = "article.updated"
	TypeArticleDeleted = "article.deleted"

	TypeOrderCreated = "order.created"
	TypeOrderUpdated = "order.updated"

	TypeUserCreated = "user.created"
	TypeUserUpdated = "user.updated"
	TypeUserDeleted = "user.deleted"
)

// Kafka topics, one per entity family.
const (
	TopicCatalog = "storefront-catalog"
	TopicOrders  = "storefront-orders"
	TopicUsers   = "storefront-users"
)

// Event is a change notification. EntityID is the string form of the mutated
// record's id.
type Event struct {
	ID         string    `json:"event_id"`
	Type       string    `json:"event_type"`
	Collection string    `json:"collection"`
	EntityID   string    `json:"entity_id"`
	Timestamp  time.Time `json:"timestamp"`
}
