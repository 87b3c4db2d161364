package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pbank/auth"
	"pbank/config"
	"pbank/database"
	"pbank/handlers"
	"pbank/ledger"
	"pbank/logger"
	"pbank/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	zl := logger.New("pbank")
	defer zl.Sync()

	db, err := config.InitDB(cfg)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zl.Fatal("failed to get database instance", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := database.Migrate(db); err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}
	if cfg.SeedDemoData {
		if err := database.Seed(db); err != nil {
			zl.Fatal("seeding failed", zap.Error(err))
		}
		zl.Info("demo data seeded")
	}

	rdb, err := config.InitRedis(cfg)
	if err != nil {
		zl.Fatal("redis connection failed", zap.Error(err))
	}

	users := store.NewGormUsers(db)
	var stocks store.Stocks = store.NewGormStocks(db)
	if rdb != nil {
		stocks = store.NewCachedStocks(stocks, rdb)
	}
	transactions := store.NewGormTransactions(db)

	creds := auth.NewCredentials(users)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	book := ledger.New(stocks, transactions)

	h := handlers.New(creds, tokens, book, stocks, users, rdb, cfg.RefreshTTL, zl)
	router := handlers.NewRouter(h, tokens)

	zl.Info("server starting", zap.String("addr", cfg.BindAddr))
	if err := router.Run(cfg.BindAddr); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
