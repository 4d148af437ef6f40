// Command seed-db provisions a demo restaurant, its API key, and a handful of
// surplus offers so local clients have something to reserve right away.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foodyhq/foody/internal/storage/postgres"
)

const (
	upsertRestaurantSQL = `
		INSERT INTO restaurants (id, title)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title`

	upsertAPIKeySQL = `
		INSERT INTO api_keys (restaurant_id, key_hash)
		VALUES ($1, $2)
		ON CONFLICT (restaurant_id) DO UPDATE SET key_hash = EXCLUDED.key_hash`

	insertOfferSQL = `
		INSERT INTO offers (id, restaurant_id, title, description, price_cents,
			original_price_cents, qty_total, qty_left, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8)`
)

const demoRestaurantID = "demo-bakery"

func main() {
	var (
		databaseURL  string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&apiKey, "api-key", "", "plaintext API key to seed (or FOODY_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or FOODY_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("FOODY_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or FOODY_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("FOODY_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedRestaurant(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed restaurant")
	}

	if err := seedOffers(ctx, pool); err != nil {
		return errors.Wrap(err, "seed offers")
	}

	return nil
}

func seedRestaurant(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding demo restaurant", slog.String("id", demoRestaurantID))

	if _, err := pool.Exec(ctx, upsertRestaurantSQL, demoRestaurantID, "Demo Bakery"); err != nil {
		return errors.Wrap(err, "upsert restaurant")
	}

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	if _, err := pool.Exec(ctx, upsertAPIKeySQL, demoRestaurantID, keyHash); err != nil {
		return errors.Wrap(err, "upsert API key")
	}

	return nil
}

func seedOffers(ctx context.Context, pool *pgxpool.Pool) error {
	now := time.Now()

	offers := []struct {
		title       string
		description string
		priceCents  int64
		original    *int64
		qty         int
		expiresIn   time.Duration
	}{
		{
			title:       "Surprise pastry box",
			description: "Five assorted pastries from today's bake",
			priceCents:  500,
			original:    cents(1500),
			qty:         8,
			expiresIn:   3 * time.Hour,
		},
		{
			title:       "Sourdough loaf",
			description: "Day-of sourdough, whole loaf",
			priceCents:  300,
			original:    cents(700),
			qty:         4,
			expiresIn:   90 * time.Minute,
		},
		{
			title:       "Soup of the day",
			description: "One litre, bring your own container",
			priceCents:  400,
			original:    nil,
			qty:         6,
			expiresIn:   45 * time.Minute,
		},
	}

	slog.Info("seeding offers", slog.Int("count", len(offers)))

	for _, o := range offers {
		id := uuid.New().String()
		if _, err := pool.Exec(ctx, insertOfferSQL,
			id, demoRestaurantID, o.title, o.description,
			o.priceCents, o.original, o.qty, now.Add(o.expiresIn),
		); err != nil {
			return errors.Wrapf(err, "insert offer %q", o.title)
		}

		slog.Info("inserted offer", slog.String("id", id), slog.String("title", o.title))
	}

	return nil
}

func cents(v int64) *int64 { return &v }
