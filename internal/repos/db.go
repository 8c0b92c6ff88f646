package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	// :memory: gives every pooled connection its own database.
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	// Demo catalog (idempotent; safe to run every start)
	if err := seedCatalog(db); err != nil {
		return nil, err
	}

	return db, nil
}

func EnsureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Catalog
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  price TEXT NOT NULL DEFAULT '0',
  final_price TEXT NOT NULL DEFAULT '0',
  category TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  available_units TEXT NOT NULL DEFAULT '0',
  image TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_name     ON products(name);

CREATE TABLE IF NOT EXISTS banners(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT ''
);

-- Profiles, keyed by the auth provider uid
CREATE TABLE IF NOT EXISTS users(
  uid TEXT PRIMARY KEY,
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  updated_at TEXT
);

-- Local auth provider
CREATE TABLE IF NOT EXISTS credentials(
  uid TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_credentials_email ON credentials(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  uid TEXT NOT NULL REFERENCES credentials(uid) ON DELETE CASCADE,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  revoked_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_uid ON sessions(uid);

-- Cart and wishlist share the line shape; product_id is the line id
CREATE TABLE IF NOT EXISTS cart_lines(
  uid TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL DEFAULT '',
  product_image TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  size TEXT NOT NULL DEFAULT '',
  color TEXT NOT NULL DEFAULT '',
  quantity TEXT NOT NULL DEFAULT '1',
  total_price TEXT NOT NULL DEFAULT '0',
  updated_at TEXT,
  PRIMARY KEY (uid, product_id)
);

CREATE TABLE IF NOT EXISTS wishlist_lines(
  uid TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL DEFAULT '',
  product_image TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  size TEXT NOT NULL DEFAULT '',
  color TEXT NOT NULL DEFAULT '',
  quantity TEXT NOT NULL DEFAULT '1',
  total_price TEXT NOT NULL DEFAULT '0',
  updated_at TEXT,
  PRIMARY KEY (uid, product_id)
);

-- Orders are append-only; record_id is ours, order_id comes from the payload
CREATE TABLE IF NOT EXISTS orders(
  record_id TEXT PRIMARY KEY,
  uid TEXT NOT NULL,
  order_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_uid ON orders(uid);

-- Payments captured without a stored order
CREATE TABLE IF NOT EXISTS payment_reconciliations(
  id TEXT PRIMARY KEY,
  uid TEXT NOT NULL,
  order_id TEXT NOT NULL,
  gateway_order_id TEXT NOT NULL,
  payment_id TEXT NOT NULL,
  amount INTEGER NOT NULL,
  reason TEXT NOT NULL,
  refund_status TEXT NOT NULL,
  refund_id TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := db.Exec(schema)
	return err
}

// seedCatalog inserts the demo storefront rows that are missing.
func seedCatalog(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n == 0 {
		log.Println("[seed] inserting demo categories/products/banners")
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO categories(id,name,description,image) VALUES
	  ('men','Men','Shirts, tees and jeans','categories/men.jpg'),
	  ('women','Women','Dresses, tops and skirts','categories/women.jpg'),
	  ('kids','Kids','Everyday wear for kids','categories/kids.jpg')
	  ON CONFLICT(id) DO NOTHING`)

	tx.MustExec(`INSERT INTO products(id,name,price,final_price,category,description,available_units,image) VALUES
	  ('tee-001','Classic Cotton Tee','799','599','men','Regular fit crew neck tee','40','products/tee-001.jpg'),
	  ('shirt-001','Oxford Shirt','1999','1499','men','Button-down oxford in light blue','15','products/shirt-001.jpg'),
	  ('dress-001','Floral Summer Dress','2499','1999','women','Midi dress with flutter sleeves','12','products/dress-001.jpg'),
	  ('skirt-001','Pleated Skirt','1299','1299','women','A-line pleated skirt','8','products/skirt-001.jpg'),
	  ('hood-001','Kids Zip Hoodie','999','749','kids','Fleece hoodie with front pockets','20','products/hood-001.jpg')
	  ON CONFLICT(id) DO NOTHING`)

	tx.MustExec(`INSERT INTO banners(id,title,description,image) VALUES
	  ('summer','Summer Sale','Up to 40% off dresses','banners/summer.jpg'),
	  ('new','New Arrivals','Fresh fits for the season','banners/new.jpg')
	  ON CONFLICT(id) DO NOTHING`)

	return tx.Commit()
}
