package config

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"aishare/models"
)

// DSN builds a Postgres connection string. An explicit DatabaseURI wins
// over the individual fields.
func (c AppConfig) DSN() string {
	if c.DatabaseURI != "" {
		return c.DatabaseURI
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// InitDatabase opens the Postgres connection, tunes the pool, migrates the
// schema, and installs the full-text search column and trigger.
func InitDatabase(cfg AppConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("acquire sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Tag{},
		&models.PostTag{},
		&models.Favorite{},
		&models.Report{},
		&models.ModerationAction{},
		&models.UserRead{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	if err := ensureSearchSchema(db); err != nil {
		return nil, fmt.Errorf("ensure search schema: %w", err)
	}
	return db, nil
}

// ensureSearchSchema installs the tsvector search column on posts, the
// trigger that keeps it current, and the GIN index the ranked queries
// depend on. Every statement is idempotent so boot can run it repeatedly.
func ensureSearchSchema(db *gorm.DB) error {
	stmts := []string{
		`ALTER TABLE posts ADD COLUMN IF NOT EXISTS search_vec tsvector`,

		`CREATE OR REPLACE FUNCTION posts_search_tsv_update() RETURNS trigger AS $$
BEGIN
  NEW.search_vec :=
    setweight(to_tsvector('simple', coalesce(NEW.title, '')), 'A') ||
    setweight(to_tsvector('simple', coalesce(NEW.ai_name, '')), 'B') ||
    setweight(to_tsvector('simple', coalesce(NEW.tools, '')), 'B') ||
    setweight(to_tsvector('simple', coalesce(NEW.genre, '')), 'C') ||
    setweight(to_tsvector('simple', coalesce(NEW.author, '')), 'C') ||
    setweight(to_tsvector('simple', coalesce(NEW.content, '')), 'D');
  RETURN NEW;
END
$$ LANGUAGE plpgsql`,

		`DROP TRIGGER IF EXISTS posts_search_tsv_trigger ON posts`,

		`CREATE TRIGGER posts_search_tsv_trigger
BEFORE INSERT OR UPDATE OF title, ai_name, tools, genre, author, content
ON posts FOR EACH ROW EXECUTE FUNCTION posts_search_tsv_update()`,

		`UPDATE posts SET search_vec =
    setweight(to_tsvector('simple', coalesce(title, '')), 'A') ||
    setweight(to_tsvector('simple', coalesce(ai_name, '')), 'B') ||
    setweight(to_tsvector('simple', coalesce(tools, '')), 'B') ||
    setweight(to_tsvector('simple', coalesce(genre, '')), 'C') ||
    setweight(to_tsvector('simple', coalesce(author, '')), 'C') ||
    setweight(to_tsvector('simple', coalesce(content, '')), 'D')
  WHERE search_vec IS NULL`,

		`CREATE INDEX IF NOT EXISTS idx_posts_search_vec ON posts USING GIN (search_vec)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_status_created_at ON posts (status, created_at DESC)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
