package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/atlaspharma/atlas-api/internal/config"
	"github.com/atlaspharma/atlas-api/internal/database"
	"github.com/atlaspharma/atlas-api/internal/models"
)

// Listing is one parsed CSV row ready for import
type Listing struct {
	Pharmaceutical  models.Pharmaceutical
	Quantity        int
	UnitPrice       string
	ExpiryDate      time.Time
	BatchNumber     string
	StorageLocation string
}

func main() {
	// Command line flags
	dryRun := flag.Bool("dry-run", false, "Preview changes without writing to database")
	localFile := flag.String("file", "", "CSV file with inventory listings (required)")
	sellerEmail := flag.String("seller", "", "Email of the seller account to attach listings to (required)")
	skipExpired := flag.Bool("skip-expired", false, "Skip rows whose expiry date is already in the past")
	flag.Parse()

	if *localFile == "" || *sellerEmail == "" {
		flag.Usage()
		os.Exit(2)
	}

	// Load .env
	godotenv.Load()

	// Load config
	cfg := config.Load()

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Starting inventory import...")

	file, err := os.Open(*localFile)
	if err != nil {
		log.Fatalf("Failed to open file: %v", err)
	}
	defer file.Close()

	listings, err := parseListings(file, *skipExpired)
	if err != nil {
		log.Fatalf("Failed to parse listings: %v", err)
	}

	log.Printf("Found %d listings to import", len(listings))

	if *dryRun {
		log.Println("DRY RUN - No changes will be made")
		printPreview(listings, 20)
		return
	}

	seller, err := db.GetUserByEmail(context.Background(), *sellerEmail)
	if err != nil {
		log.Fatalf("Failed to look up seller %q: %v", *sellerEmail, err)
	}

	imported, updated, err := importListings(db, seller.ID, listings)
	if err != nil {
		log.Fatalf("Failed to import listings: %v", err)
	}

	log.Printf("Import complete: %d new listings, %d updated", imported, updated)
}

// parseListings reads the CSV and validates each row. Malformed rows are
// logged and skipped rather than aborting the whole import.
func parseListings(reader io.Reader, skipExpired bool) ([]Listing, error) {
	csvReader := csv.NewReader(bufio.NewReader(reader))

	// Read header
	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// Find column indices
	// Expected: brand_name,generic_name,manufacturer,dosage_form,ndc_code,
	//           category,strength,quantity,unit_price,expiry_date,
	//           batch_number,storage_location
	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}

	required := []string{"brand_name", "ndc_code", "quantity", "unit_price", "expiry_date"}
	for _, col := range required {
		if _, ok := colMap[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	field := func(record []string, name string) string {
		idx, ok := colMap[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var listings []Listing
	rowCount := 0

	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("Warning: skipping malformed row: %v", err)
			continue
		}

		rowCount++

		listing := Listing{
			Pharmaceutical: models.Pharmaceutical{
				BrandName:    field(record, "brand_name"),
				GenericName:  field(record, "generic_name"),
				Manufacturer: field(record, "manufacturer"),
				DosageForm:   field(record, "dosage_form"),
				NDCCode:      field(record, "ndc_code"),
				Category:     field(record, "category"),
				Strength:     field(record, "strength"),
			},
			UnitPrice:       field(record, "unit_price"),
			BatchNumber:     field(record, "batch_number"),
			StorageLocation: field(record, "storage_location"),
		}

		if listing.Pharmaceutical.BrandName == "" || listing.Pharmaceutical.NDCCode == "" {
			log.Printf("Warning: row %d missing brand name or NDC code, skipping", rowCount)
			continue
		}

		listing.Quantity, err = strconv.Atoi(field(record, "quantity"))
		if err != nil || listing.Quantity < 0 {
			log.Printf("Warning: row %d has invalid quantity %q, skipping", rowCount, field(record, "quantity"))
			continue
		}

		if _, err := decimal.NewFromString(listing.UnitPrice); err != nil {
			log.Printf("Warning: row %d has invalid unit price %q, skipping", rowCount, listing.UnitPrice)
			continue
		}

		listing.ExpiryDate, err = time.Parse("2006-01-02", field(record, "expiry_date"))
		if err != nil {
			log.Printf("Warning: row %d has invalid expiry date %q, skipping", rowCount, field(record, "expiry_date"))
			continue
		}

		if skipExpired && listing.ExpiryDate.Before(time.Now()) {
			continue
		}

		listings = append(listings, listing)
	}

	log.Printf("Processed %d rows", rowCount)

	return listings, nil
}

// importListings upserts listings in batched transactions, keyed on
// (seller, NDC code, batch number)
func importListings(db *database.DB, sellerID int, listings []Listing) (imported, updated int, err error) {
	ctx := context.Background()
	batchSize := 500

	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		batch := listings[i:end]

		batchImported, batchUpdated, err := importBatch(ctx, db, sellerID, batch)
		if err != nil {
			return imported, updated, err
		}
		imported += batchImported
		updated += batchUpdated

		log.Printf("Progress: %d/%d listings processed (%d new, %d updated)",
			end, len(listings), imported, updated)
	}

	return imported, updated, nil
}

func importBatch(ctx context.Context, db *database.DB, sellerID int, listings []Listing) (imported, updated int, err error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, l := range listings {
		var existingID int
		err := tx.QueryRow(ctx, `
			SELECT id FROM inventory_records
			WHERE seller_id = $1 AND ndc_code = $2 AND batch_number = $3
		`, sellerID, l.Pharmaceutical.NDCCode, l.BatchNumber).Scan(&existingID)

		if err == pgx.ErrNoRows {
			_, err = tx.Exec(ctx, `
				INSERT INTO inventory_records (
					brand_name, generic_name, manufacturer, dosage_form,
					ndc_code, category, strength, quantity, unit_price,
					expiry_date, status, batch_number, storage_location, seller_id
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			`, l.Pharmaceutical.BrandName, l.Pharmaceutical.GenericName,
				l.Pharmaceutical.Manufacturer, l.Pharmaceutical.DosageForm,
				l.Pharmaceutical.NDCCode, l.Pharmaceutical.Category,
				l.Pharmaceutical.Strength, l.Quantity, l.UnitPrice,
				l.ExpiryDate, models.StatusAvailable, l.BatchNumber,
				l.StorageLocation, sellerID)
			if err != nil {
				return imported, updated, fmt.Errorf("failed to insert %s (%s): %w",
					l.Pharmaceutical.BrandName, l.Pharmaceutical.NDCCode, err)
			}
			imported++
		} else if err != nil {
			return imported, updated, fmt.Errorf("failed to check existing %s (%s): %w",
				l.Pharmaceutical.BrandName, l.Pharmaceutical.NDCCode, err)
		} else {
			_, err = tx.Exec(ctx, `
				UPDATE inventory_records
				SET quantity = $1, unit_price = $2, expiry_date = $3, updated_at = NOW()
				WHERE id = $4
			`, l.Quantity, l.UnitPrice, l.ExpiryDate, existingID)
			if err != nil {
				return imported, updated, fmt.Errorf("failed to update %s (%s): %w",
					l.Pharmaceutical.BrandName, l.Pharmaceutical.NDCCode, err)
			}
			updated++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return imported, updated, nil
}

// printPreview shows a sample of the data to be imported
func printPreview(listings []Listing, limit int) {
	fmt.Println("\n=== Preview of listings to import ===")
	fmt.Printf("Total: %d listings\n\n", len(listings))

	// Group by manufacturer for summary
	mfrCount := make(map[string]int)
	for _, l := range listings {
		mfrCount[l.Pharmaceutical.Manufacturer]++
	}

	fmt.Println("Listings per manufacturer:")
	for mfr, count := range mfrCount {
		if mfr == "" {
			mfr = "(unknown)"
		}
		fmt.Printf("  %s: %d listings\n", mfr, count)
	}

	fmt.Printf("\nSample listings (first %d):\n", limit)
	for i, l := range listings {
		if i >= limit {
			break
		}
		fmt.Printf("  %s %s (%s) - qty %d @ %s, expires %s\n",
			l.Pharmaceutical.BrandName, l.Pharmaceutical.Strength,
			l.Pharmaceutical.NDCCode, l.Quantity, l.UnitPrice,
			l.ExpiryDate.Format("2006-01-02"))
	}
}
