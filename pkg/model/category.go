package model

// CategoryProperty declares one selectable attribute and its allowed values.
type CategoryProperty struct {
	Name   string   `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Values []string `json:"values" bson:"values"`
}

// Category is a single-parent tree node. The effective property schema of a
// trip is its category's properties plus every ancestor's, leaf first.
type Category struct {
	ID         string             `json:"_id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name       string             `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Parent     string             `json:"parent,omitempty" bson:"parent,omitempty" validate:"omitempty,mongodb"`
	Properties []CategoryProperty `json:"properties" bson:"properties" validate:"omitempty,dive"`
	Image      string             `json:"image,omitempty" bson:"image,omitempty" validate:"omitempty,url"`
}

// CategoryView is the list projection with the parent reference populated.
// A dangling parent id yields a nil parent, not an error.
type CategoryView struct {
	ID         string             `json:"_id"`
	Name       string             `json:"name"`
	Parent     *Category          `json:"parent,omitempty"`
	Properties []CategoryProperty `json:"properties"`
	Image      string             `json:"image,omitempty"`
}
