// Package geoindex maps coordinates to H3 cells.
package geoindex

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/uber/h3-go/v4"

	"github.com/groupnom/overture-import/domain/place"
)

// Default resolutions. Resolution 8 cells are roughly 0.7 km^2, resolution
// 9 cells roughly 0.1 km^2.
const (
	DefaultCoarseResolution = 8
	DefaultFineResolution   = 9
)

// ErrInvalidCoordinate indicates a coordinate outside the valid range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// ErrInvalidResolution indicates a resolution outside 0..15.
var ErrInvalidResolution = errors.New("invalid resolution")

var world = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// Indexer computes H3 cells at a coarse and a fine resolution.
type Indexer struct {
	coarse int
	fine   int
}

// NewIndexer creates an Indexer with the default resolutions.
func NewIndexer() Indexer {
	return Indexer{coarse: DefaultCoarseResolution, fine: DefaultFineResolution}
}

// NewIndexerWithResolutions creates an Indexer with custom resolutions.
func NewIndexerWithResolutions(coarse, fine int) (Indexer, error) {
	for _, r := range []int{coarse, fine} {
		if r < 0 || r > h3.MaxResolution {
			return Indexer{}, fmt.Errorf("%w: %d", ErrInvalidResolution, r)
		}
	}
	return Indexer{coarse: coarse, fine: fine}, nil
}

// Cell returns the H3 cell of p at res as a hex string.
func (i Indexer) Cell(p orb.Point, res int) (string, error) {
	if !ValidPoint(p) {
		return "", fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidCoordinate, p.Lat(), p.Lon())
	}
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat(), p.Lon()), res)
	if err != nil {
		return "", fmt.Errorf("h3 cell at resolution %d: %w", res, err)
	}
	return cell.String(), nil
}

// Index returns both cells of p. Each cell is computed independently and is
// left empty if it cannot be computed.
func (i Indexer) Index(p orb.Point) place.Cells {
	coarse, err := i.Cell(p, i.coarse)
	if err != nil {
		coarse = ""
	}
	fine, err := i.Cell(p, i.fine)
	if err != nil {
		fine = ""
	}
	return place.NewCells(coarse, fine)
}

// ValidPoint reports whether p is a finite coordinate on the globe.
func ValidPoint(p orb.Point) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return world.Contains(p)
}
