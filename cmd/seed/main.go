// Command seed fills the collectible catalog with a generated album.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/osse101/StickerSwap_Go/internal/catalog"
	"github.com/osse101/StickerSwap_Go/internal/database"
	"github.com/osse101/StickerSwap_Go/internal/database/postgres"
)

type seedConfig struct {
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME" envDefault:"stickerswap"`
}

func (c seedConfig) connString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func main() {
	groups := flag.Int("groups", catalog.DefaultGroups, "number of groups in the album")
	perGroup := flag.Int("per-group", catalog.DefaultPlayersPerGroup, "collectibles per group")
	seed := flag.Uint64("seed", 0, "faker seed, 0 for random")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	var cfg seedConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Failed to parse environment: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.connString(), 2, 30*time.Minute, time.Hour)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if _, err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	album := catalog.Generate(gofakeit.New(*seed), *groups, *perGroup)
	if err := postgres.NewCatalogRepository(pool).UpsertCollectibles(ctx, album); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}
	log.Printf("Seeded %d collectibles into %s\n", len(album), cfg.DBName)
}
