package persistence

import (
	"database/sql/driver"
	"math"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// CategoryList stores normalized category labels. PostgreSQL keeps them in a
// native text[] column; SQLite stores the same array literal as text.
type CategoryList []string

// Scan implements sql.Scanner.
func (c *CategoryList) Scan(value any) error {
	var arr pq.StringArray
	if err := arr.Scan(value); err != nil {
		return err
	}
	*c = CategoryList(arr)
	return nil
}

// Value implements driver.Valuer.
func (c CategoryList) Value() (driver.Value, error) {
	if c == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(c).Value()
}

// GormDBDataType picks the column type per dialect.
func (CategoryList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// RestaurantModel represents the restaurants table.
type RestaurantModel struct {
	ID                 int64        `gorm:"column:id;primaryKey;autoIncrement"`
	GersID             string       `gorm:"column:gers_id;size:64;uniqueIndex;not null"`
	Name               string       `gorm:"column:name;size:255;not null"`
	Address            *string      `gorm:"column:address;size:500"`
	City               *string      `gorm:"column:city;size:100"`
	State              *string      `gorm:"column:state;size:2;index"`
	PostalCode         *string      `gorm:"column:postal_code;size:20"`
	Country            *string      `gorm:"column:country;size:2"`
	Lat                *float64     `gorm:"column:lat"`
	Lng                *float64     `gorm:"column:lng"`
	H3IndexRes8        *string      `gorm:"column:h3_index_res8;size:15;index"`
	H3IndexRes9        *string      `gorm:"column:h3_index_res9;size:15;index"`
	Categories         CategoryList `gorm:"column:categories"`
	PrimaryCategory    *string      `gorm:"column:primary_category;size:100;index"`
	OvertureUpdateDate string       `gorm:"column:overture_update_date;size:32"`
	CreatedAt          time.Time    `gorm:"column:created_at"`
	UpdatedAt          time.Time    `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (RestaurantModel) TableName() string { return "restaurants" }

// ImportLogModel represents the import_logs table.
type ImportLogModel struct {
	ID               int64      `gorm:"column:id;primaryKey;autoIncrement"`
	OvertureRelease  string     `gorm:"column:overture_release;size:32;not null"`
	Status           string     `gorm:"column:status;size:20;not null;index"`
	StartedAt        time.Time  `gorm:"column:started_at;not null"`
	CompletedAt      *time.Time `gorm:"column:completed_at"`
	RecordsProcessed int        `gorm:"column:records_processed;not null;default:0"`
	RecordsInserted  int        `gorm:"column:records_inserted;not null;default:0"`
	RecordsUpdated   int        `gorm:"column:records_updated;not null;default:0"`
	ErrorMessage     *string    `gorm:"column:error_message"`
}

// TableName returns the table name.
func (ImportLogModel) TableName() string { return "import_logs" }

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ordinate stores a non-finite coordinate as NULL.
func ordinate(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// derefOrdinate reads a NULL coordinate back as NaN.
func derefOrdinate(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
