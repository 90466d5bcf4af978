package models

import "strings"

// TagPrefix is the mandatory first character of every tag name.
const TagPrefix = "#"

type Tag struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

func HasTagPrefix(name string) bool {
	return strings.HasPrefix(name, TagPrefix)
}

type TagCreateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=50"`
}

type TagUpdateRequest struct {
	Name *string `json:"name" validate:"omitempty,min=2,max=50"`
}

type TagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
