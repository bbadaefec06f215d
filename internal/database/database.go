package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/animedex/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Initialize creates and configures the database connection
func Initialize() error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// Fallback to individual components
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "anime_user")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "anime_db")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	// Configure GORM logger
	gormLogger := logger.Default
	if os.Getenv("ENVIRONMENT") == "development" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db
	log.Println("Database connected successfully")

	return nil
}

// Migrate runs auto-migration for the catalog schema
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	err := DB.AutoMigrate(
		&models.Anime{},
		&models.Studio{},
		&models.Genre{},
		&models.Theme{},
		&models.Demographic{},
		&models.Character{},
		&models.VoiceActor{},
		&models.AnimeStudio{},
		&models.AnimeGenre{},
		&models.AnimeTheme{},
		&models.AnimeDemographic{},
		&models.AnimeCharacter{},
		&models.AnimeCharacterVoiceActor{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed")
	return nil
}

// createIndexes creates performance indexes for the indexer's batch queries
func createIndexes() error {
	// Join-table lookup indexes used by the aggregation CTEs
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_anime_characters_anime ON anime_characters (anime_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_anime_characters_character ON anime_characters (character_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_acva_anime_character ON anime_character_voice_actors (anime_id, character_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_anime_studios_anime ON anime_studios (anime_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_anime_genres_anime ON anime_genres (anime_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_anime_themes_anime ON anime_themes (anime_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_anime_demographics_anime ON anime_demographics (anime_id)")

	// Character ranking inside the top-N window
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_characters_favorites ON characters (favorites DESC NULLS LAST)")

	// Voice actors are filtered to one canonical language at index time
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_voice_actors_language ON voice_actors (language)")

	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}

// getEnvOrDefault returns environment variable or default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
