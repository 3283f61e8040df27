// Package model holds the entities persisted by the repositories.
package model

import "time"

// Recipe is one row of the recipe table.
//
// ID is zero until the recipe is persisted and never changes afterwards.
// The db tags are the column names used for hydration.
type Recipe struct {
	ID              int64     `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Ingredients     string    `json:"ingredients" db:"ingredients"`
	Description     string    `json:"description" db:"description"`
	Created         time.Time `json:"created" db:"created"`
	Updated         time.Time `json:"updated" db:"updated"`
	PreparationTime int       `json:"preparationTime" db:"preparation_time"`
	Preparation     string    `json:"preparation" db:"preparation"`
	AdminID         int64     `json:"adminId" db:"admin_id"`
}

// IsPersisted reports whether the recipe has a store-generated id.
func (r Recipe) IsPersisted() bool {
	return r.ID != 0
}
