package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/groupnom/overture-import/domain/store"
)

type widgetModel struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Code  string `gorm:"uniqueIndex"`
	Color string
}

func (widgetModel) TableName() string { return "widgets" }

type widget struct {
	code  string
	color string
}

type widgetMapper struct{}

func (widgetMapper) ToDomain(m widgetModel) widget { return widget{code: m.Code, color: m.Color} }
func (widgetMapper) ToModel(w widget) widgetModel  { return widgetModel{Code: w.code, Color: w.color} }

func newWidgetRepository(t *testing.T) Repository[widget, widgetModel] {
	t.Helper()
	ctx := context.Background()
	db, _ := openTestDB(t)
	if err := db.Session(ctx).AutoMigrate(&widgetModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	rows := []widgetModel{
		{Code: "a", Color: "red"},
		{Code: "b", Color: "blue"},
		{Code: "c", Color: "red"},
	}
	if err := db.Session(ctx).Create(&rows).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewRepository[widget, widgetModel](db, widgetMapper{}, "widget")
}

func TestRepository_Find(t *testing.T) {
	ctx := context.Background()
	repo := newWidgetRepository(t)

	got, err := repo.Find(ctx, store.WithCondition("color", "red"), store.WithOrderDesc("code"))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 2 || got[0].code != "c" || got[1].code != "a" {
		t.Errorf("unexpected result: %+v", got)
	}

	limited, err := repo.Find(ctx, store.WithOrderAsc("code"), store.WithLimit(1), store.WithOffset(1))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(limited) != 1 || limited[0].code != "b" {
		t.Errorf("unexpected page: %+v", limited)
	}
}

func TestRepository_FindOne(t *testing.T) {
	ctx := context.Background()
	repo := newWidgetRepository(t)

	got, err := repo.FindOne(ctx, store.WithCondition("code", "b"))
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if got.color != "blue" {
		t.Errorf("expected blue, got %s", got.color)
	}

	_, err = repo.FindOne(ctx, store.WithCondition("code", "zzz"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_CountIn(t *testing.T) {
	ctx := context.Background()
	repo := newWidgetRepository(t)

	count, err := repo.Count(ctx, store.WithConditionIn("code", []string{"a", "c", "x"}))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2, got %d", count)
	}

	txn, err := repo.Database().Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer func() { _ = txn.Rollback() }()

	if err := txn.Session().Create(&widgetModel{Code: "x", Color: "green"}).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	inTx, err := repo.CountIn(txn.Session(), store.WithConditionIn("code", []string{"a", "c", "x"}))
	if err != nil {
		t.Fatalf("CountIn: %v", err)
	}
	if inTx != 3 {
		t.Errorf("expected 3 inside transaction, got %d", inTx)
	}
}

func TestTruncateSQL(t *testing.T) {
	short := "SELECT 1"
	if truncateSQL(short) != short {
		t.Errorf("short SQL should be unchanged")
	}
	long := "SELECT " + strings.Repeat("x", 500)
	got := truncateSQL(long)
	if len(got) > maxSQLLength || !strings.Contains(got, "...") {
		t.Errorf("unexpected truncation: %d chars", len(got))
	}
}
