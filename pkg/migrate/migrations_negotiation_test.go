package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mateovergara/sitesupply-backend/pkg/migrate"
)

func TestInitSchemaMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE purchase_orders",
		"CREATE TABLE negotiation_messages",
		"CREATE UNIQUE INDEX ux_purchase_orders_order_number",
		"CREATE UNIQUE INDEX idx_message_reads_message_user",
		"CREATE UNIQUE INDEX ux_vendor_invoices_invoice_number",
		"WHERE status <> 'cancelled'",
		"DROP TABLE IF EXISTS negotiation_messages",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
