package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type seedService struct {
	Name        string
	Slug        string
	Type        string
	Description string
	BasePrice   float64
	Options     []seedOption
}

type seedOption struct {
	Name  string
	Price *float64
}

type seedCategory struct {
	Name     string
	Slug     string
	Products []seedProduct
}

type seedProduct struct {
	Name  string
	Slug  string
	Price float64
}

var services = []seedService{
	{
		Name: "Cleaning", Slug: "cleaning", Type: "RESIDENTIAL",
		Description: "From quick tidy-ups to deep cleaning that resets your home.",
		BasePrice:   80,
		Options: []seedOption{
			{Name: "Home & apartment cleaning"},
			{Name: "After-party & post-renovation"},
			{Name: "Carpet and exterior cleaning"},
		},
	},
	{
		Name: "Maid Service", Slug: "maid", Type: "RESIDENTIAL",
		Description: "Regular help to keep life moving smoothly.",
		BasePrice:   60,
		Options: []seedOption{
			{Name: "Tidy, dishes, mop & vacuum"},
			{Name: "Surface dusting & light organizing"},
			{Name: "Hourly or recurring visits"},
		},
	},
	{
		Name: "Laundry Service", Slug: "laundry", Type: "RESIDENTIAL",
		Description: "Drop the baskets, keep the fresh clothes.",
		BasePrice:   25,
		Options: []seedOption{
			{Name: "Pickup & delivery"},
			{Name: "Folding and sorting"},
			{Name: "Monthly laundry passes"},
		},
	},
	{
		Name: "Lawn Care", Slug: "lawn", Type: "RESIDENTIAL",
		Description: "Keep the yard as clean as the inside.",
		BasePrice:   50,
		Options: []seedOption{
			{Name: "Mowing & trimming"},
			{Name: "Leaf cleanup"},
			{Name: "Seasonal yard reset"},
		},
	},
	{
		Name: "Handyman", Slug: "handyman", Type: "RESIDENTIAL",
		Description: "Small fixes done right, without the hassle.",
		BasePrice:   75,
		Options: []seedOption{
			{Name: "Mounting & assembly"},
			{Name: "Minor repairs"},
			{Name: "Fixture replacement"},
		},
	},
	{
		Name: "Snow Removal", Slug: "snow", Type: "RESIDENTIAL",
		Description: "Driveways and walkways cleared before you wake up.",
		BasePrice:   40,
		Options: []seedOption{
			{Name: "Driveway clearing"},
			{Name: "Walkway salting"},
			{Name: "Seasonal contracts"},
		},
	},
	{
		Name: "Move-In / Move-Out", Slug: "move", Type: "RESIDENTIAL",
		Description: "Leave it spotless, arrive to spotless.",
		BasePrice:   150,
		Options: []seedOption{
			{Name: "Full deep clean"},
			{Name: "Appliance interiors"},
			{Name: "Wall & baseboard wash"},
		},
	},
	{
		Name: "Home Renovation", Slug: "reno", Type: "RESIDENTIAL",
		Description: "Bigger projects, planned and delivered.",
		BasePrice:   200,
		Options: []seedOption{
			{Name: "Kitchen & bathroom updates"},
			{Name: "Flooring & painting"},
			{Name: "Basement finishing"},
		},
	},
	{
		Name: "Pest Control", Slug: "pest", Type: "RESIDENTIAL",
		Description: "Evict the uninvited guests, keep them out.",
		BasePrice:   100,
		Options: []seedOption{
			{Name: "Inspection & treatment"},
			{Name: "Rodent proofing"},
			{Name: "Seasonal prevention"},
		},
	},
	{
		Name: "Vacation Home / Airbnb", Slug: "airbnb", Type: "RESIDENTIAL",
		Description: "Turnovers that keep the five-star reviews coming.",
		BasePrice:   90,
		Options: []seedOption{
			{Name: "Guest turnover cleaning"},
			{Name: "Linen & restock service"},
			{Name: "Check-out inspections"},
		},
	},
}

var categories = []seedCategory{
	{
		Name: "Home Care & Essentials", Slug: "home-care-essentials",
		Products: []seedProduct{
			{Name: "Dish Wash Liquid — Citrus", Slug: "dish-wash-liquid-citrus", Price: 5.99},
			{Name: "Multi-purpose Cleaner", Slug: "multi-purpose-cleaner", Price: 6.49},
			{Name: "Oven Cleaner Gel", Slug: "oven-cleaner-gel", Price: 7.25},
			{Name: "Household Bleach", Slug: "household-bleach", Price: 4.99},
			{Name: "Fabric Soap (Laundry)", Slug: "fabric-soap-laundry", Price: 8.49},
			{Name: "Air Freshener Spray", Slug: "air-freshener-spray", Price: 5.25},
		},
	},
	{
		Name: "Automotive Cleaning", Slug: "automotive-cleaning",
		Products: []seedProduct{
			{Name: "Microfiber Towels — 3 pack", Slug: "microfiber-towels-3pack", Price: 9.99},
			{Name: "Car Wash Shampoo", Slug: "car-wash-shampoo", Price: 11.49},
		},
	},
	{
		Name: "Corporate Cleaning Bundles", Slug: "corporate-cleaning-bundles",
		Products: []seedProduct{
			{Name: "Office Starter Bundle", Slug: "office-starter-bundle", Price: 49.99},
		},
	},
	{
		Name: "Airbnb Essentials", Slug: "airbnb-essentials",
		Products: []seedProduct{
			{Name: "Turnover Kit", Slug: "turnover-kit", Price: 34.99},
		},
	},
}

// Seeds the service catalog and shop inventory. Safe to run repeatedly:
// rows are matched by slug and only inserted when missing.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("DB_URL is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := seedServices(db); err != nil {
		log.Fatal("Failed to seed services: ", err)
	}
	if err := seedShop(db); err != nil {
		log.Fatal("Failed to seed shop: ", err)
	}
	log.Println("Seeding complete")
}

func seedServices(db *sql.DB) error {
	for _, svc := range services {
		var serviceID string
		err := db.QueryRow(`SELECT id FROM services WHERE slug = $1`, svc.Slug).Scan(&serviceID)
		if err == sql.ErrNoRows {
			serviceID = uuid.NewString()
			_, err = db.Exec(
				`INSERT INTO services (id, name, slug, type, description, base_price, is_active, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), NOW())`,
				serviceID, svc.Name, svc.Slug, svc.Type, svc.Description, svc.BasePrice,
			)
			if err != nil {
				return err
			}
			log.Printf("Seeded service %q", svc.Slug)
		} else if err != nil {
			return err
		}

		for _, opt := range svc.Options {
			var count int
			err := db.QueryRow(
				`SELECT COUNT(*) FROM service_options WHERE service_id = $1 AND name = $2`,
				serviceID, opt.Name,
			).Scan(&count)
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			_, err = db.Exec(
				`INSERT INTO service_options (id, service_id, name, price, is_active, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())`,
				uuid.NewString(), serviceID, opt.Name, opt.Price,
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func seedShop(db *sql.DB) error {
	for _, cat := range categories {
		var categoryID string
		err := db.QueryRow(`SELECT id FROM product_categories WHERE slug = $1`, cat.Slug).Scan(&categoryID)
		if err == sql.ErrNoRows {
			categoryID = uuid.NewString()
			_, err = db.Exec(
				`INSERT INTO product_categories (id, name, slug, is_active, created_at, updated_at)
				 VALUES ($1, $2, $3, TRUE, NOW(), NOW())`,
				categoryID, cat.Name, cat.Slug,
			)
			if err != nil {
				return err
			}
			log.Printf("Seeded category %q", cat.Slug)
		} else if err != nil {
			return err
		}

		for _, product := range cat.Products {
			var count int
			err := db.QueryRow(`SELECT COUNT(*) FROM products WHERE slug = $1`, product.Slug).Scan(&count)
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			_, err = db.Exec(
				`INSERT INTO products (id, category_id, name, slug, price, is_active, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())`,
				uuid.NewString(), categoryID, product.Name, product.Slug, product.Price,
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
