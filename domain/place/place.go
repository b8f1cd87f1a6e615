// Package place defines source places and the restaurants derived from them.
package place

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/groupnom/overture-import/domain/taxonomy"
)

// Address holds the first address of a place.
type Address struct {
	Line       string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Raw is one row read from the source dataset. Point is (lng, lat) and
// holds NaN ordinates when the source value was null or not numeric.
type Raw struct {
	GersID              string
	Name                string
	Address             Address
	Point               orb.Point
	PrimaryCategory     string
	AlternateCategories []string
}

// Lat returns the latitude.
func (r Raw) Lat() float64 { return r.Point.Lat() }

// Lng returns the longitude.
func (r Raw) Lng() float64 { return r.Point.Lon() }

// Cells holds the H3 cell identifiers of a place at the coarse and fine
// resolutions. An empty identifier means the coordinate could not be indexed.
type Cells struct {
	coarse string
	fine   string
}

// NewCells creates Cells.
func NewCells(coarse, fine string) Cells {
	return Cells{coarse: coarse, fine: fine}
}

// Coarse returns the coarse cell, or false if absent.
func (c Cells) Coarse() (string, bool) { return c.coarse, c.coarse != "" }

// Fine returns the fine cell, or false if absent.
func (c Cells) Fine() (string, bool) { return c.fine, c.fine != "" }

// Restaurant is the enriched, persisted form of a place.
type Restaurant struct {
	id         int64
	gersID     string
	name       string
	address    Address
	point      orb.Point
	cells      Cells
	categories taxonomy.Categories
	release    string
	createdAt  time.Time
	updatedAt  time.Time
}

// NewRestaurant creates a Restaurant. Callers are responsible for field
// length limits.
func NewRestaurant(
	gersID string,
	name string,
	address Address,
	point orb.Point,
	cells Cells,
	categories taxonomy.Categories,
	release string,
) Restaurant {
	return Restaurant{
		gersID:     gersID,
		name:       name,
		address:    address,
		point:      point,
		cells:      cells,
		categories: categories,
		release:    release,
	}
}

// WithStored returns a copy carrying the store-managed identity and timestamps.
func (r Restaurant) WithStored(id int64, createdAt, updatedAt time.Time) Restaurant {
	r.id = id
	r.createdAt = createdAt
	r.updatedAt = updatedAt
	return r
}

// ID returns the store identifier (0 if never stored).
func (r Restaurant) ID() int64 { return r.id }

// GersID returns the global entity reference, the natural key.
func (r Restaurant) GersID() string { return r.gersID }

// Name returns the display name.
func (r Restaurant) Name() string { return r.name }

// Address returns the address.
func (r Restaurant) Address() Address { return r.address }

// Lat returns the latitude.
func (r Restaurant) Lat() float64 { return r.point.Lat() }

// Lng returns the longitude.
func (r Restaurant) Lng() float64 { return r.point.Lon() }

// Point returns the coordinate.
func (r Restaurant) Point() orb.Point { return r.point }

// Cells returns the H3 cells.
func (r Restaurant) Cells() Cells { return r.cells }

// Categories returns the normalized categories.
func (r Restaurant) Categories() taxonomy.Categories { return r.categories }

// Release returns the source release the record came from.
func (r Restaurant) Release() string { return r.release }

// CreatedAt returns when the row was first stored.
func (r Restaurant) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns when the row was last written.
func (r Restaurant) UpdatedAt() time.Time { return r.updatedAt }
