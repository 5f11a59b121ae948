// Package sse implements Server-Sent Events for broadcasting inventory
// changes to open browser tabs.
//
// Mutations emit typed events delivered to every connected client over an
// SSE stream, so a store page in another tab gets a defined notification
// when the inventory it is showing changes.
package sse

import (
	"time"

	"github.com/bookstandapp/bookstand-web/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventInventoryCreated signals a book was added to a store's inventory.
	EventInventoryCreated EventType = "inventory.created"
	// EventInventoryUpdated signals an inventory item's price changed.
	EventInventoryUpdated EventType = "inventory.updated"
	// EventInventoryDeleted signals an inventory item was removed.
	EventInventoryDeleted EventType = "inventory.deleted"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event is a single broadcastable notification.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Type      EventType `json:"type"`
}

// InventoryEventData is the payload for inventory events. It carries enough
// for a listening store page to decide whether it needs to refresh.
type InventoryEventData struct {
	InventoryID int64   `json:"inventory_id"`
	StoreID     int64   `json:"store_id"`
	BookID      int64   `json:"book_id,omitempty"`
	Price       float64 `json:"price,omitempty"`
}

// NewInventoryCreatedEvent builds the event for a new inventory item.
func NewInventoryCreatedEvent(item domain.InventoryItem) Event {
	return Event{
		Type:      EventInventoryCreated,
		Timestamp: time.Now(),
		Data: InventoryEventData{
			InventoryID: item.ID,
			StoreID:     item.StoreID,
			BookID:      item.BookID,
			Price:       item.Price,
		},
	}
}

// NewInventoryUpdatedEvent builds the event for a price change.
func NewInventoryUpdatedEvent(item domain.InventoryItem) Event {
	return Event{
		Type:      EventInventoryUpdated,
		Timestamp: time.Now(),
		Data: InventoryEventData{
			InventoryID: item.ID,
			StoreID:     item.StoreID,
			BookID:      item.BookID,
			Price:       item.Price,
		},
	}
}

// NewInventoryDeletedEvent builds the event for a removed item.
func NewInventoryDeletedEvent(inventoryID, storeID int64) Event {
	return Event{
		Type:      EventInventoryDeleted,
		Timestamp: time.Now(),
		Data: InventoryEventData{
			InventoryID: inventoryID,
			StoreID:     storeID,
		},
	}
}

// NewHeartbeatEvent builds a keepalive event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Timestamp: time.Now(),
	}
}
