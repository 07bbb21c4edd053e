package models

import "time"

// Dataset is a named, registered data source. Names are unique across the
// whole service; updated_at is refreshed on every mutation.
type Dataset struct {
	ID        int64     `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	Source    string    `db:"source"     json:"source"`
	Format    string    `db:"format"     json:"format"`
	Owner     *string   `db:"owner"      json:"owner,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
