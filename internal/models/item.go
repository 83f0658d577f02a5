package models

import (
	"time"
)

// ItemType enumerates the kinds of provider objects the connector returns
type ItemType string

const (
	ItemTypeContact ItemType = "Contact"
	ItemTypeCompany ItemType = "Company"
)

// Item is the provider-neutral representation of a CRM object.
// Optional fields are omitted from JSON when unknown.
type Item struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Type             ItemType   `json:"type"`
	ParentID         *string    `json:"parent_id,omitempty"`
	ParentPathOrName *string    `json:"parent_path_or_name,omitempty"`
	URL              *string    `json:"url,omitempty"`
	CreationTime     *time.Time `json:"creation_time,omitempty"`
	LastModifiedTime *time.Time `json:"last_modified_time,omitempty"`
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
