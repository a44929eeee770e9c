package main

import (
	"database/sql"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/noah-isme/backend-kasir/internal/catalog"
	"github.com/noah-isme/backend-kasir/internal/db"
)

func main() {
	reset := flag.Bool("reset", false, "delete all products and receipts before seeding")
	migrate := flag.Bool("migrate", true, "apply pending migrations first")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	if *migrate {
		if err := db.RunMigrations(dbURL); err != nil {
			log.Fatalf("Failed to migrate: %v", err)
		}
	}

	conn, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer conn.Close()

	if err := conn.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	if *reset {
		if _, err := conn.Exec(`TRUNCATE sale_receipts, products RESTART IDENTITY`); err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
		log.Println("Tables reset")
	}

	if err := seedProducts(conn); err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}
	log.Println("Seeding completed successfully!")
}

// seedProducts writes the initial catalog with fixed ids so sale fixtures can
// rely on them, then moves the id sequence past the highest id.
func seedProducts(conn *sql.DB) error {
	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range catalog.InitialProducts() {
		res, err := tx.Exec(`
			INSERT INTO products (id, name, price)
			VALUES ($1, $2, $3::numeric)
			ON CONFLICT (id) DO NOTHING;
		`, p.ID, p.Name, p.Price.String())
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			log.Printf("Seeded product %d %q at %s", p.ID, p.Name, p.Price.StringFixed(2))
		} else {
			log.Printf("Product %d already present, skipped", p.ID)
		}
	}

	if _, err := tx.Exec(`SELECT setval(pg_get_serial_sequence('products', 'id'), (SELECT COALESCE(MAX(id), 1) FROM products))`); err != nil {
		return err
	}
	return tx.Commit()
}
