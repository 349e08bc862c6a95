package server

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"

	"warden/internal/database"
	"warden/internal/domain"
	"warden/internal/remote"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAPITest(t *testing.T) *remote.Client {
	t.Helper()

	t.Setenv("SERVICE_ID", "warden-test")
	t.Setenv("SERVICE_SECRET", "open-sesame")
	t.Setenv("JWT_SECRET", "routes-test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if _, err := database.SetupDB(
		database.WithExistingDB(db),
		database.WithAutoMigrate(true),
		database.WithMigrations(
			&domain.BlockList{},
			&domain.BlockItem{},
			&domain.Schedule{},
			&domain.AppCategory{},
			&domain.ServiceAccount{},
		),
		database.WithSeedDefaults(true),
	); err != nil {
		t.Fatalf("setup database: %v", err)
	}
	t.Cleanup(func() {
		database.DB = nil
	})

	server := httptest.NewServer(NewRouter())
	t.Cleanup(server.Close)

	client, err := remote.NewClient(server.URL, "warden-test", "open-sesame")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client
}

func TestConfigAPIRoundTrip(t *testing.T) {
	client := setupAPITest(t)
	ctx := context.Background()

	created, err := client.CreateBlockList(ctx, domain.BlockList{
		Name:     "Evenings",
		IsActive: true,
		Items: []domain.BlockItem{
			{Kind: domain.ItemKindDomain, Identifier: "x.com", Name: "X", IsActive: true},
		},
	})
	if err != nil {
		t.Fatalf("CreateBlockList: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created list has no id")
	}

	items, err := client.AddItems(ctx, created.ID, []domain.BlockItem{
		{Kind: domain.ItemKindApp, Identifier: "com.example.game", Name: "Game", IsActive: true},
	})
	if err != nil {
		t.Fatalf("AddItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %+v", items)
	}

	lists, err := client.FetchBlockLists(ctx)
	if err != nil {
		t.Fatalf("FetchBlockLists: %v", err)
	}
	if len(lists) != 1 || len(lists[0].Items) != 2 {
		t.Fatalf("lists = %+v", lists)
	}

	created.Name = "Late evenings"
	updated, err := client.UpdateBlockList(ctx, created)
	if err != nil {
		t.Fatalf("UpdateBlockList: %v", err)
	}
	if updated.Name != "Late evenings" {
		t.Fatalf("updated name = %q", updated.Name)
	}

	if err := client.DeleteItem(ctx, created.ID, items[0].ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if err := client.DeleteBlockList(ctx, created.ID); err != nil {
		t.Fatalf("DeleteBlockList: %v", err)
	}

	// Deleting again hits a real 404 which the client treats as success.
	if err := client.DeleteBlockList(ctx, created.ID); err != nil {
		t.Fatalf("repeated DeleteBlockList: %v", err)
	}
}

func TestConfigAPISchedulesAndCategories(t *testing.T) {
	client := setupAPITest(t)
	ctx := context.Background()

	schedule, err := client.CreateSchedule(ctx, domain.Schedule{
		Name:        "Office hours",
		StartMinute: 9 * 60,
		EndMinute:   17 * 60,
		Weekdays:    domain.WeekdaySet{1, 2, 3, 4, 5},
		IsActive:    true,
		ListIDs:     domain.IDList{1},
	})
	if err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}

	schedule.EndMinute = 18 * 60
	updated, err := client.UpdateSchedule(ctx, schedule)
	if err != nil {
		t.Fatalf("UpdateSchedule: %v", err)
	}
	if updated.EndMinute != 18*60 {
		t.Fatalf("updated schedule = %+v", updated)
	}

	if err := client.DeleteSchedule(ctx, schedule.ID); err != nil {
		t.Fatalf("DeleteSchedule: %v", err)
	}
	if err := client.DeleteSchedule(ctx, schedule.ID); err != nil {
		t.Fatalf("repeated DeleteSchedule: %v", err)
	}

	categories, err := client.FetchAppCategories(ctx)
	if err != nil {
		t.Fatalf("FetchAppCategories: %v", err)
	}
	if len(categories) == 0 {
		t.Fatal("seeded categories missing")
	}

	target := categories[0]
	target.IsActive = false
	toggled, err := client.UpdateAppCategory(ctx, target)
	if err != nil {
		t.Fatalf("UpdateAppCategory: %v", err)
	}
	if toggled.IsActive {
		t.Fatal("category still active after update")
	}
}

func TestConfigAPIRejectsBadCredentials(t *testing.T) {
	setupAPITest(t)

	server := httptest.NewServer(NewRouter())
	defer server.Close()

	client, err := remote.NewClient(server.URL, "warden-test", "wrong-secret")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.FetchBlockLists(context.Background()); err == nil {
		t.Fatal("expected authentication failure")
	}
}
