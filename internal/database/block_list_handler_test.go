package database

import (
	"errors"
	"fmt"
	"testing"

	"warden/internal/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&domain.BlockList{},
		&domain.BlockItem{},
		&domain.Schedule{},
		&domain.AppCategory{},
		&domain.ServiceAccount{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	DB = db

	t.Cleanup(func() {
		DB = nil
	})

	return db
}

func TestCreateAndGetBlockLists(t *testing.T) {
	setupTestDB(t)

	created, err := CreateBlockList(domain.BlockList{
		Name:     "Evenings",
		IsActive: true,
		Items: []domain.BlockItem{
			{Kind: domain.ItemKindDomain, Identifier: "x.com", Name: "X", IsActive: true},
			{Kind: domain.ItemKindApp, Identifier: "com.example.game", Name: "Game", IsActive: true},
		},
	})
	if err != nil {
		t.Fatalf("CreateBlockList: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created list has no id")
	}

	lists, err := GetBlockLists()
	if err != nil {
		t.Fatalf("GetBlockLists: %v", err)
	}
	if len(lists) != 1 || len(lists[0].Items) != 2 {
		t.Fatalf("lists = %+v", lists)
	}
}

func TestCreateBlockListValidation(t *testing.T) {
	setupTestDB(t)

	if _, err := CreateBlockList(domain.BlockList{Name: "   "}); !errors.Is(err, ErrBlockListNameRequired) {
		t.Fatalf("blank name error = %v", err)
	}

	_, err := CreateBlockList(domain.BlockList{
		Name:  "Bad",
		Items: []domain.BlockItem{{Kind: "website", Identifier: "x.com"}},
	})
	if !errors.Is(err, ErrBlockItemInvalidKind) {
		t.Fatalf("invalid kind error = %v", err)
	}
}

func TestUpdateBlockList(t *testing.T) {
	setupTestDB(t)

	created, err := CreateBlockList(domain.BlockList{Name: "Old", IsActive: true})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := UpdateBlockList(created.ID, domain.BlockList{Name: "New", IsActive: false})
	if err != nil {
		t.Fatalf("UpdateBlockList: %v", err)
	}
	if updated.Name != "New" || updated.IsActive {
		t.Fatalf("updated list = %+v", updated)
	}

	if _, err := UpdateBlockList(9999, domain.BlockList{Name: "X"}); !errors.Is(err, ErrBlockListNotFound) {
		t.Fatalf("missing list error = %v", err)
	}
}

func TestDeleteBlockListRemovesItems(t *testing.T) {
	db := setupTestDB(t)

	created, err := CreateBlockList(domain.BlockList{
		Name: "Doomed",
		Items: []domain.BlockItem{
			{Kind: domain.ItemKindDomain, Identifier: "x.com", IsActive: true},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := DeleteBlockList(created.ID); err != nil {
		t.Fatalf("DeleteBlockList: %v", err)
	}

	var itemCount int64
	if err := db.Model(&domain.BlockItem{}).Where("list_id = ?", created.ID).Count(&itemCount).Error; err != nil {
		t.Fatal(err)
	}
	if itemCount != 0 {
		t.Fatalf("%d orphaned items left behind", itemCount)
	}

	if err := DeleteBlockList(created.ID); !errors.Is(err, ErrBlockListNotFound) {
		t.Fatalf("second delete error = %v, want ErrBlockListNotFound", err)
	}
}

func TestAddAndDeleteBlockItems(t *testing.T) {
	setupTestDB(t)

	created, err := CreateBlockList(domain.BlockList{Name: "Growing"})
	if err != nil {
		t.Fatal(err)
	}

	items, err := AddBlockItems(created.ID, []domain.BlockItem{
		{Kind: domain.ItemKindDomain, Identifier: "y.com", Name: "Y", IsActive: true},
	})
	if err != nil {
		t.Fatalf("AddBlockItems: %v", err)
	}
	if len(items) != 1 || items[0].ListID != created.ID {
		t.Fatalf("items = %+v", items)
	}

	if _, err := AddBlockItems(9999, items); !errors.Is(err, ErrBlockListNotFound) {
		t.Fatalf("missing list error = %v", err)
	}

	if err := DeleteBlockItem(created.ID, items[0].ID); err != nil {
		t.Fatalf("DeleteBlockItem: %v", err)
	}
	if err := DeleteBlockItem(created.ID, items[0].ID); !errors.Is(err, ErrBlockItemNotFound) {
		t.Fatalf("second item delete error = %v", err)
	}
}
