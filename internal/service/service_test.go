package service

import (
	"path/filepath"
	"testing"
	"time"

	"preschoolfees/internal/database"
	"preschoolfees/internal/models"
)

var today = date(2015, time.April, 1)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(""); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// seedHousehold stores a single mother with three kids born 2012, 2013 and 2014
func seedHousehold(t *testing.T, svc *FamilyService) *models.Household {
	t.Helper()

	family := &models.Family{MotherName: "ensamma mamman olsson", MotherEmail: "ensammamamman@test.se"}
	if err := svc.CreateFamily(family); err != nil {
		t.Fatalf("CreateFamily() error = %v", err)
	}

	kids := []*models.Kid{
		{FamilyID: &family.ID, SSN: "20120102-0714", FullName: "Ena Barnet", StartDate: date(2012, time.July, 1)},
		{FamilyID: &family.ID, SSN: "20131023-0717", FullName: "Andra Barnet", StartDate: date(2013, time.July, 1)},
		{FamilyID: &family.ID, SSN: "20140923-0716", FullName: "Tredje Barnet", StartDate: date(2014, time.July, 1)},
	}
	for _, kid := range kids {
		if err := svc.CreateKid(kid, today); err != nil {
			t.Fatalf("CreateKid() error = %v", err)
		}
	}

	household, err := svc.GetHousehold(family.ID)
	if err != nil {
		t.Fatalf("GetHousehold() error = %v", err)
	}
	return household
}
