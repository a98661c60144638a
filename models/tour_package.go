package models

import "time"

var PackageCategories = []string{"adventure", "cultural", "nature", "spiritual"}

// TourPackage is a bookable tour offered by the operator.
type TourPackage struct {
	ID             string    `bson:"id" json:"id"`
	Title          string    `bson:"title" json:"title"`
	Description    string    `bson:"description" json:"description"`
	Duration       int       `bson:"duration" json:"duration"` // Days
	Price          float64   `bson:"price" json:"price"`       // Per person
	Location       string    `bson:"location" json:"location"`
	MaxGroupSize   int       `bson:"max_group_size" json:"maxGroupSize"`
	AvailableSpots int       `bson:"available_spots" json:"availableSpots"`
	Category       string    `bson:"category" json:"category"`
	ImageURL       string    `bson:"image_url,omitempty" json:"imageUrl"`
	Itinerary      []string  `bson:"itinerary,omitempty" json:"itinerary"`
	Included       []string  `bson:"included,omitempty" json:"included"`
	Excluded       []string  `bson:"excluded,omitempty" json:"excluded"`
	IsActive       bool      `bson:"is_active" json:"isActive"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}

// TourPackageInput is the admin payload for creating or replacing a package.
type TourPackageInput struct {
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description" binding:"required"`
	Duration       int      `json:"duration" binding:"required,min=1"`
	Price          float64  `json:"price" binding:"min=0"`
	Location       string   `json:"location" binding:"required"`
	MaxGroupSize   int      `json:"maxGroupSize" binding:"required,min=1"`
	AvailableSpots int      `json:"availableSpots" binding:"min=0"`
	Category       string   `json:"category"`
	ImageURL       string   `json:"imageUrl"`
	Itinerary      []string `json:"itinerary"`
	Included       []string `json:"included"`
	Excluded       []string `json:"excluded"`
	IsActive       *bool    `json:"isActive"`
}
