// Command offer-import loads surplus offers from partner feed files into the
// database. Feeds are gzip-compressed CSV, one offer per row:
//
//	external_ref,title,description,price,original_price,qty,expires_at
//
// Prices are decimal currency amounts ("4.50"), expires_at is RFC 3339. Rows
// whose external_ref was already imported are skipped, so feeds can be
// replayed safely.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/foodyhq/foody/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	feedColumns   = 7
)

const insertOfferSQL = `
	INSERT INTO offers (id, restaurant_id, title, description, price_cents,
		original_price_cents, qty_total, qty_left, expires_at, external_ref)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8, $9)
	ON CONFLICT (external_ref) WHERE external_ref IS NOT NULL DO NOTHING`

// feedOffer is one parsed feed row.
type feedOffer struct {
	ExternalRef   string
	Title         string
	Description   string
	PriceCents    int64
	OriginalCents *int64
	Qty           int
	ExpiresAt     time.Time
}

func main() {
	var (
		databaseURL  string
		restaurantID string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&restaurantID, "restaurant", "", "restaurant ID to attach imported offers to")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if restaurantID == "" {
		slog.Error("restaurant ID is required: set --restaurant")
		os.Exit(1)
	}
	files := flag.Args()
	if len(files) == 0 {
		slog.Error("at least one feed file is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, restaurantID, files); err != nil {
		slog.Error("offer import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("offer import completed successfully")
}

func run(ctx context.Context, databaseURL, restaurantID string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	slog.Info("parsing feeds", slog.Int("files", len(files)))

	parsed, err := parseFeeds(ctx, files)
	if err != nil {
		return errors.Wrap(err, "parse feeds")
	}

	offers := dedupe(parsed)
	slog.Info("feeds parsed",
		slog.Int("rows", countRows(parsed)),
		slog.Int("unique", len(offers)),
	)

	if len(offers) == 0 {
		slog.Info("no offers to import")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := writeOffers(ctx, pool, restaurantID, offers); err != nil {
		return errors.Wrap(err, "write offers to database")
	}

	return nil
}

// parseFeeds reads every feed concurrently, one goroutine per file.
func parseFeeds(ctx context.Context, files []string) ([][]feedOffer, error) {
	parsed := make([][]feedOffer, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			offers, err := parseFeedFile(ctx, f)
			if err != nil {
				return errors.Wrapf(err, "parse %s", f)
			}
			slog.Info("feed parsed", slog.String("file", f), slog.Int("rows", len(offers)))
			parsed[i] = offers
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return parsed, nil
}

func parseFeedFile(ctx context.Context, path string) ([]feedOffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "create gzip reader")
	}
	defer func() { _ = gz.Close() }()

	r := csv.NewReader(gz)
	r.FieldsPerRecord = feedColumns

	var offers []feedOffer
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read line %d", line)
		}
		if line == 1 && strings.EqualFold(rec[0], "external_ref") {
			continue // header
		}

		o, err := parseRow(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		offers = append(offers, o)
	}

	return offers, nil
}

func parseRow(rec []string) (feedOffer, error) {
	o := feedOffer{
		ExternalRef: strings.TrimSpace(rec[0]),
		Title:       strings.TrimSpace(rec[1]),
		Description: strings.TrimSpace(rec[2]),
	}
	if o.ExternalRef == "" {
		return o, errors.New("empty external_ref")
	}
	if o.Title == "" {
		return o, errors.New("empty title")
	}

	price, err := parseCents(rec[3])
	if err != nil {
		return o, errors.Wrap(err, "parse price")
	}
	if price <= 0 {
		return o, errors.New("price must be positive")
	}
	o.PriceCents = price

	if v := strings.TrimSpace(rec[4]); v != "" {
		original, err := parseCents(v)
		if err != nil {
			return o, errors.Wrap(err, "parse original_price")
		}
		o.OriginalCents = &original
	}

	qty, err := strconv.Atoi(strings.TrimSpace(rec[5]))
	if err != nil {
		return o, errors.Wrap(err, "parse qty")
	}
	if qty < 1 {
		return o, errors.New("qty must be at least 1")
	}
	o.Qty = qty

	expiresAt, err := time.Parse(time.RFC3339, strings.TrimSpace(rec[6]))
	if err != nil {
		return o, errors.Wrap(err, "parse expires_at")
	}
	o.ExpiresAt = expiresAt

	return o, nil
}

// parseCents converts a decimal currency string ("4.50") to integer cents.
func parseCents(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

// dedupe merges parsed feeds, keeping the first occurrence of each
// external_ref. The bloom filter is a fast-path membership test; on a positive
// hit the seen map confirms, so false positives never drop a row.
func dedupe(parsed [][]feedOffer) []feedOffer {
	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	seen := make(map[string]struct{})

	var out []feedOffer
	for _, offers := range parsed {
		for _, o := range offers {
			if filter.TestString(o.ExternalRef) {
				if _, dup := seen[o.ExternalRef]; dup {
					continue
				}
			}
			filter.AddString(o.ExternalRef)
			seen[o.ExternalRef] = struct{}{}
			out = append(out, o)
		}
	}

	return out
}

func countRows(parsed [][]feedOffer) int {
	var n int
	for _, offers := range parsed {
		n += len(offers)
	}
	return n
}

func writeOffers(ctx context.Context, pool *pgxpool.Pool, restaurantID string, offers []feedOffer) error {
	slog.Info("writing offers to database", slog.Int("count", len(offers)))

	var inserted, skipped int
	for _, o := range offers {
		tag, err := pool.Exec(ctx, insertOfferSQL,
			uuid.New().String(), restaurantID, o.Title, o.Description,
			o.PriceCents, o.OriginalCents, o.Qty, o.ExpiresAt, o.ExternalRef,
		)
		if err != nil {
			return errors.Wrapf(err, "insert offer %s", o.ExternalRef)
		}
		if tag.RowsAffected() == 0 {
			skipped++ // already imported in a previous run
			continue
		}
		inserted++
	}

	slog.Info("offers written", slog.Int("inserted", inserted), slog.Int("skipped", skipped))
	return nil
}
