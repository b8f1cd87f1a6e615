package persistence

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/groupnom/overture-import/domain/importrun"
	"github.com/groupnom/overture-import/domain/place"
	"github.com/groupnom/overture-import/domain/taxonomy"
)

// RestaurantMapper maps between place.Restaurant and RestaurantModel.
type RestaurantMapper struct{}

// ToDomain converts a RestaurantModel to a place.Restaurant.
func (RestaurantMapper) ToDomain(e RestaurantModel) place.Restaurant {
	address := place.Address{
		Line:       deref(e.Address),
		City:       deref(e.City),
		State:      deref(e.State),
		PostalCode: deref(e.PostalCode),
		Country:    deref(e.Country),
	}
	cells := place.NewCells(deref(e.H3IndexRes8), deref(e.H3IndexRes9))

	return place.NewRestaurant(
		e.GersID,
		e.Name,
		address,
		orb.Point{derefOrdinate(e.Lng), derefOrdinate(e.Lat)},
		cells,
		taxonomy.NewCategories(e.Categories),
		e.OvertureUpdateDate,
	).WithStored(e.ID, e.CreatedAt, e.UpdatedAt)
}

// ToModel converts a place.Restaurant to a RestaurantModel.
func (RestaurantMapper) ToModel(r place.Restaurant) RestaurantModel {
	address := r.Address()
	coarse, _ := r.Cells().Coarse()
	fine, _ := r.Cells().Fine()
	primary, _ := r.Categories().Primary()

	return RestaurantModel{
		ID:                 r.ID(),
		GersID:             r.GersID(),
		Name:               r.Name(),
		Address:            nullable(address.Line),
		City:               nullable(address.City),
		State:              nullable(address.State),
		PostalCode:         nullable(address.PostalCode),
		Country:            nullable(address.Country),
		Lat:                ordinate(r.Lat()),
		Lng:                ordinate(r.Lng()),
		H3IndexRes8:        nullable(coarse),
		H3IndexRes9:        nullable(fine),
		Categories:         CategoryList(r.Categories().Labels()),
		PrimaryCategory:    nullable(primary),
		OvertureUpdateDate: r.Release(),
		CreatedAt:          r.CreatedAt(),
		UpdatedAt:          r.UpdatedAt(),
	}
}

// RunMapper maps between importrun.Run and ImportLogModel.
type RunMapper struct{}

// ToDomain converts an ImportLogModel to an importrun.Run.
func (RunMapper) ToDomain(e ImportLogModel) importrun.Run {
	var completedAt time.Time
	if e.CompletedAt != nil {
		completedAt = *e.CompletedAt
	}
	return importrun.RestoreRun(
		e.ID,
		e.OvertureRelease,
		importrun.Status(e.Status),
		e.StartedAt,
		completedAt,
		importrun.NewCounts(e.RecordsProcessed, e.RecordsInserted, e.RecordsUpdated),
		deref(e.ErrorMessage),
	)
}

// ToModel converts an importrun.Run to an ImportLogModel.
func (RunMapper) ToModel(r importrun.Run) ImportLogModel {
	var completedAt *time.Time
	if !r.CompletedAt().IsZero() {
		t := r.CompletedAt()
		completedAt = &t
	}
	counts := r.Counts()
	return ImportLogModel{
		ID:               r.ID(),
		OvertureRelease:  r.Release(),
		Status:           string(r.Status()),
		StartedAt:        r.StartedAt(),
		CompletedAt:      completedAt,
		RecordsProcessed: counts.Processed(),
		RecordsInserted:  counts.Inserted(),
		RecordsUpdated:   counts.Updated(),
		ErrorMessage:     nullable(r.ErrorMessage()),
	}
}
