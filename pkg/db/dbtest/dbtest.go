// Package dbtest opens in-memory SQLite databases that mirror the Postgres schema
// closely enough for repository and pipeline tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var counter atomic.Int64

var schema = []string{
	`CREATE TABLE stores (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  kind TEXT NOT NULL,
  pujasera_group_slug TEXT,
  pradana_token_balance REAL NOT NULL DEFAULT 0,
  transaction_counter INTEGER NOT NULL DEFAULT 0,
  admin_uids TEXT,
  whatsapp TEXT,
  last_transaction_at DATETIME,
  last_reengagement_sent_at DATETIME,
  source_job_id TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  CHECK (pradana_token_balance >= 0)
);`,
	`CREATE UNIQUE INDEX stores_source_job_id_key ON stores (source_job_id);`,
	`CREATE UNIQUE INDEX stores_pujasera_group_slug_hub_key ON stores (pujasera_group_slug) WHERE kind = 'hub';`,
	`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  identity_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  whatsapp TEXT,
  role TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE auth_identities (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE products (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price REAL NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  track_stock INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  CHECK (stock >= 0)
);`,
	`CREATE TABLE customers (
  id TEXT PRIMARY KEY,
  scope_id TEXT NOT NULL,
  name TEXT NOT NULL,
  phone TEXT,
  loyalty_points INTEGER NOT NULL DEFAULT 0,
  member_tier TEXT NOT NULL DEFAULT 'bronze',
  created_at DATETIME,
  updated_at DATETIME,
  CHECK (loyalty_points >= 0)
);`,
	`CREATE TABLE transactions (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  receipt_number INTEGER NOT NULL,
  customer_id TEXT,
  customer_name TEXT NOT NULL DEFAULT '',
  items TEXT NOT NULL,
  subtotal REAL NOT NULL,
  tax_amount REAL NOT NULL DEFAULT 0,
  service_fee_amount REAL NOT NULL DEFAULT 0,
  discount_amount REAL NOT NULL DEFAULT 0,
  total_amount REAL NOT NULL,
  payment_method TEXT NOT NULL DEFAULT '',
  staff_id TEXT NOT NULL DEFAULT '',
  points_earned INTEGER NOT NULL DEFAULT 0,
  points_redeemed INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL,
  items_status_by_tenant TEXT,
  parent_transaction_id TEXT,
  table_id TEXT,
  is_from_catalog INTEGER NOT NULL DEFAULT 0,
  platform_fee_tokens REAL NOT NULL DEFAULT 0,
  source_job_id TEXT,
  error TEXT,
  distributed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (store_id, receipt_number)
);`,
	`CREATE TABLE tables (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  name TEXT NOT NULL,
  status TEXT NOT NULL,
  current_order TEXT,
  is_virtual INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE job_queue (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  payload TEXT NOT NULL,
  status TEXT NOT NULL,
  error TEXT,
  created_at DATETIME,
  processed_at DATETIME
);`,
	`CREATE TABLE token_ledger_entries (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  amount REAL NOT NULL,
  reference TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (store_id, reference)
);`,
	`CREATE TABLE platform_settings (
  id TEXT PRIMARY KEY,
  fee_percentage REAL,
  min_fee_rp REAL,
  max_fee_rp REAL,
  token_value_rp REAL,
  tenant_bonus_tokens REAL,
  pujasera_bonus_tokens REAL,
  updated_at DATETIME
);`,
	`CREATE TABLE outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
	`CREATE TABLE outbox_dlq (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload_json TEXT NOT NULL,
  error_reason TEXT NOT NULL,
  error_message TEXT,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  failed_at DATETIME,
  created_at DATETIME
);`,
}

// Open returns a fresh in-memory database with the full schema applied. The
// connection pool is pinned to a single connection so concurrent callers
// serialize the way row locks would serialize them in Postgres.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, counter.Add(1))

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}
