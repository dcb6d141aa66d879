package model

// Room is a bookable study room. The reservation core treats rooms as
// opaque foreign keys; this type exists for the catalog listing endpoint.
//
// Fields:
//  ID   – primary key identifier.
//  Name – display name (e.g. "Study Room 101").
//  Type – room category (e.g. "GROUP", "SINGLE").
type Room struct {
	ID   int64  `json:"id"`   // rooms.id
	Name string `json:"name"` // rooms.name
	Type string `json:"type"` // rooms.type
}
