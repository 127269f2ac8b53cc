// seed-admin bootstraps a fresh installation: the first station and the
// platform admin user. Safe to rerun; an existing admin gets its password
// and role reset instead of a duplicate row.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
//
// Override the defaults with SEED_ADMIN_USERNAME / SEED_ADMIN_PASSWORD /
// SEED_STATION_NAME.
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "stationAdmin"
	defaultAdminPassword = "St@tionAdmin1"
	defaultStationName   = "Main Station"
)

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	adminUsername := envOr("SEED_ADMIN_USERNAME", defaultAdminUsername)
	adminPassword := envOr("SEED_ADMIN_PASSWORD", defaultAdminPassword)
	stationName := envOr("SEED_STATION_NAME", defaultStationName)

	// History hooks and station scoping need identity + bypass flags.
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Seed")
	ctx = utils.SetUsernameInContext(ctx, adminUsername)
	ctx = utils.SetIsAdminInContext(ctx, true)
	ctx = utils.SetSkipStationScopeInContext(ctx, true)

	// First station, created only when none exists.
	var station models.Station
	err := db.WithContext(ctx).Model(&models.Station{}).First(&station).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup station: %v\n", err)
			os.Exit(1)
		}
		created, err := models.CreateStation(ctx, &models.NewStation{Name: stationName})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create station: %v\n", err)
			os.Exit(1)
		}
		station = *created
		fmt.Printf("Created station: id=%s name=%q\n", station.ID, station.Name)
	}
	ctx = utils.SetStationIdInContext(ctx, station.ID)

	hashed, err := utils.HashPassword(adminPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	hashedStr := string(hashed)

	var existing models.User
	err = db.WithContext(ctx).Model(&models.User{}).Where("username = ?", adminUsername).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		u := models.User{
			Username:  adminUsername,
			Name:      "Station Admin",
			Password:  hashedStr,
			IsActive:  utils.NewTrue(),
			Role:      models.UserRoleAdmin,
			StationId: station.ID,
		}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin user: username=%q\n", adminUsername)
		return
	}

	if err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", adminUsername).Updates(map[string]any{
		"password":   hashedStr,
		"is_active":  utils.NewTrue(),
		"station_id": station.ID,
		"role":       models.UserRoleAdmin,
	}).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	_ = existing.RemoveInstanceRedis()
	fmt.Printf("Updated admin user: username=%q\n", adminUsername)
}
