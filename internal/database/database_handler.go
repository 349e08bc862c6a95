package database

import (
	"fmt"
	"time"

	"warden/internal/auth"
	"warden/internal/domain"
	"warden/internal/support"

	"github.com/charmbracelet/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	DB *gorm.DB
)

type Config struct {
	ExistingDB   *gorm.DB
	Dialector    gorm.Dialector
	Logger       logger.Interface
	AutoMigrate  bool
	Migrations   []any
	SeedDefaults bool
}

type Option func(*Config)

func SetupDB(opts ...Option) (*gorm.DB, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	switch {
	case cfg.ExistingDB != nil:
		DB = cfg.ExistingDB
	case cfg.Dialector != nil:
		gormCfg := &gorm.Config{}
		if cfg.Logger != nil {
			gormCfg.Logger = cfg.Logger
		}
		db, err := gorm.Open(cfg.Dialector, gormCfg)
		if err != nil {
			return nil, fmt.Errorf("database: open connection: %w", err)
		}
		DB = db
		configureConnectionPool(db)
	default:
		return nil, fmt.Errorf("database: no dialector or existing connection provided")
	}

	if DB == nil {
		return nil, fmt.Errorf("database: connection was not configured")
	}

	if cfg.AutoMigrate && len(cfg.Migrations) > 0 {
		if err := DB.AutoMigrate(cfg.Migrations...); err != nil {
			return nil, fmt.Errorf("database: auto migrate: %w", err)
		}
		log.Info("Database migration completed.")
	}

	if cfg.SeedDefaults {
		if err := seedDefaults(DB); err != nil {
			return nil, fmt.Errorf("database: seed defaults: %w", err)
		}
	}

	return DB, nil
}

func defaultConfig() Config {
	return Config{
		Dialector:    postgres.Open(buildDSN()),
		Logger:       silentLogger(),
		AutoMigrate:  true,
		Migrations:   defaultMigrations(),
		SeedDefaults: true,
	}
}

func buildDSN() string {
	dbHost := support.GetEnv("DB_HOST", "localhost")
	dbPort := support.GetEnv("DB_PORT", "5434")
	dbName := support.GetEnv("DB_NAME", "warden")
	dbUser := support.GetEnv("DB_USERNAME", "admin")
	dbPassword := support.GetEnv("DB_PASSWORD", "admin")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost,
		dbPort,
		dbUser,
		dbPassword,
		dbName,
	)

	return dsn
}

func silentLogger() logger.Interface {
	return logger.New(
		log.Default(),
		logger.Config{LogLevel: logger.Silent},
	)
}

func defaultMigrations() []any {
	return []any{
		domain.BlockList{},
		domain.BlockItem{},
		domain.Schedule{},
		domain.AppCategory{},
		domain.ServiceAccount{},
	}
}

func WithExistingDB(db *gorm.DB) Option {
	return func(cfg *Config) {
		cfg.ExistingDB = db
	}
}

func WithDialector(d gorm.Dialector) Option {
	return func(cfg *Config) {
		cfg.Dialector = d
	}
}

func WithLogger(l logger.Interface) Option {
	return func(cfg *Config) {
		cfg.Logger = l
	}
}

func WithAutoMigrate(enabled bool) Option {
	return func(cfg *Config) {
		cfg.AutoMigrate = enabled
	}
}

func WithMigrations(models ...any) Option {
	return func(cfg *Config) {
		if len(models) == 0 {
			cfg.Migrations = nil
			return
		}
		cfg.Migrations = append([]any(nil), models...)
	}
}

func WithSeedDefaults(enabled bool) Option {
	return func(cfg *Config) {
		cfg.SeedDefaults = enabled
	}
}

func configureConnectionPool(db *gorm.DB) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Error("database: get sql.DB", "error", err)
		return
	}

	maxOpen := support.GetEnvInt("DB_MAX_OPEN_CONNS", 16)
	maxIdle := support.GetEnvInt("DB_MAX_IDLE_CONNS", maxOpen)
	if maxIdle > maxOpen {
		maxIdle = maxOpen
	}

	connLifetimeSeconds := support.GetEnvInt("DB_CONN_MAX_LIFETIME", 300)
	connIdleSeconds := support.GetEnvInt("DB_CONN_MAX_IDLE_TIME", 60)

	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle >= 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if connLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(connLifetimeSeconds) * time.Second)
	}
	if connIdleSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(connIdleSeconds) * time.Second)
	}
}

func seedDefaults(db *gorm.DB) error {
	if err := ensureAppCategories(db); err != nil {
		return err
	}
	return ensureServiceAccounts(db)
}

func ensureAppCategories(db *gorm.DB) error {
	if !db.Migrator().HasTable(&domain.AppCategory{}) {
		return nil
	}

	var count int64
	if err := db.Model(&domain.AppCategory{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := []domain.AppCategory{
		{SystemID: "games", Name: "Games", IsActive: true},
		{SystemID: "social", Name: "Social Networking", IsActive: true},
		{SystemID: "streaming", Name: "Streaming", IsActive: true},
		{SystemID: "news", Name: "News", IsActive: true},
		{SystemID: "shopping", Name: "Shopping", IsActive: true},
	}

	return db.Create(&categories).Error
}

// ensureServiceAccounts seeds the engine identities from the environment so a
// fresh database is immediately usable by both processes.
func ensureServiceAccounts(db *gorm.DB) error {
	if !db.Migrator().HasTable(&domain.ServiceAccount{}) {
		return nil
	}

	serviceID := support.GetEnv("SERVICE_ID", "warden-engine")
	secret := support.GetEnv("SERVICE_SECRET", "warden-dev-secret")

	var count int64
	if err := db.Model(&domain.ServiceAccount{}).Where("service_id = ?", serviceID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashSecret(secret)
	if err != nil {
		return err
	}

	return db.Create(&domain.ServiceAccount{
		ServiceID:  serviceID,
		Name:       "Warden engine",
		SecretHash: hash,
		IsActive:   true,
	}).Error
}
