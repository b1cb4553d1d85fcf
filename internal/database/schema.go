package database

import (
	"context"
	"fmt"
)

// schemaStatements is ordered so every foreign key target exists first.
// The DDL stays within the subset MySQL and PostgreSQL both accept.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS categories (
	    id VARCHAR(36) PRIMARY KEY,
	    name VARCHAR(120) NOT NULL,
	    slug VARCHAR(120) NOT NULL UNIQUE
	)`,

	`CREATE TABLE IF NOT EXISTS products (
	    id VARCHAR(36) PRIMARY KEY,
	    title VARCHAR(255) NOT NULL,
	    slug VARCHAR(255) NOT NULL UNIQUE,
	    description TEXT NOT NULL,
	    price DECIMAL(10,2) NOT NULL,
	    image VARCHAR(255) NOT NULL DEFAULT '',
	    category_id VARCHAR(36) NULL,
	    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	    FOREIGN KEY (category_id) REFERENCES categories(id)
	)`,

	`CREATE TABLE IF NOT EXISTS users (
	    id VARCHAR(36) PRIMARY KEY,
	    username VARCHAR(255) NOT NULL UNIQUE,
	    email VARCHAR(255) NOT NULL,
	    password_hash VARCHAR(255) NOT NULL,
	    first_name VARCHAR(150) NOT NULL DEFAULT '',
	    last_name VARCHAR(150) NOT NULL DEFAULT '',
	    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS user_profiles (
	    user_id VARCHAR(36) PRIMARY KEY,
	    full_name VARCHAR(255) NOT NULL DEFAULT '',
	    gender VARCHAR(10) NOT NULL DEFAULT '',
	    phone VARCHAR(20) NOT NULL DEFAULT '',
	    address TEXT NOT NULL,
	    city VARCHAR(120) NOT NULL DEFAULT '',
	    state VARCHAR(120) NOT NULL DEFAULT '',
	    postal_code VARCHAR(20) NOT NULL DEFAULT '',
	    country VARCHAR(120) NOT NULL DEFAULT 'India',
	    FOREIGN KEY (user_id) REFERENCES users(id)
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
	    id VARCHAR(36) PRIMARY KEY,
	    user_id VARCHAR(36) NOT NULL,
	    ordered BOOLEAN NOT NULL DEFAULT FALSE,
	    ordered_at TIMESTAMP NULL,
	    full_name VARCHAR(255) NOT NULL DEFAULT '',
	    phone VARCHAR(20) NOT NULL DEFAULT '',
	    email VARCHAR(255) NOT NULL DEFAULT '',
	    address_line1 VARCHAR(255) NOT NULL DEFAULT '',
	    address_line2 VARCHAR(255) NOT NULL DEFAULT '',
	    city VARCHAR(120) NOT NULL DEFAULT '',
	    state VARCHAR(120) NOT NULL DEFAULT '',
	    postal_code VARCHAR(20) NOT NULL DEFAULT '',
	    country VARCHAR(120) NOT NULL DEFAULT 'India',
	    payment_method VARCHAR(20) NOT NULL DEFAULT 'cod',
	    payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
	    cod_fee DECIMAL(6,2) NOT NULL DEFAULT 0,
	    total_amount DECIMAL(10,2) NOT NULL DEFAULT 0,
	    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	    FOREIGN KEY (user_id) REFERENCES users(id)
	)`,

	`CREATE TABLE IF NOT EXISTS order_items (
	    id VARCHAR(36) PRIMARY KEY,
	    order_id VARCHAR(36) NOT NULL,
	    product_id VARCHAR(36) NOT NULL,
	    quantity INT NOT NULL CHECK (quantity > 0),
	    price DECIMAL(10,2) NOT NULL,
	    FOREIGN KEY (order_id) REFERENCES orders(id),
	    FOREIGN KEY (product_id) REFERENCES products(id)
	)`,

	`CREATE TABLE IF NOT EXISTS payments (
	    id VARCHAR(36) PRIMARY KEY,
	    user_id VARCHAR(36) NOT NULL,
	    order_id VARCHAR(36) NULL UNIQUE,
	    stripe_payment_id VARCHAR(255) NOT NULL,
	    amount DECIMAL(10,2) NOT NULL,
	    status VARCHAR(20) NOT NULL DEFAULT 'pending',
	    payment_method VARCHAR(20) NOT NULL DEFAULT 'online',
	    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	    FOREIGN KEY (user_id) REFERENCES users(id),
	    FOREIGN KEY (order_id) REFERENCES orders(id)
	)`,
}

// tablesInDropOrder lists tables children first.
var tablesInDropOrder = []string{
	"payments",
	"order_items",
	"orders",
	"user_profiles",
	"users",
	"products",
	"categories",
}

// SetupSchema creates the storefront tables
func (db *DB) SetupSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}

// CleanupData removes all rows (but keeps schema)
func (db *DB) CleanupData(ctx context.Context) error {
	for _, table := range tablesInDropOrder {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

// DropSchema removes all storefront tables
func (db *DB) DropSchema(ctx context.Context) error {
	for _, table := range tablesInDropOrder {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	return nil
}
