package migrations_test

import (
	"context"
	"database/sql"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foundrygate/gateway-validator/internal/store"
	"github.com/foundrygate/gateway-validator/internal/store/migrations"
)

func TestMigrations(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Migrations Suite")
}

var _ = Describe("Migrations", func() {
	var (
		ctx context.Context
		db  *sql.DB
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("Run", func() {
		It("should run all migrations successfully", func() {
			err := migrations.Run(ctx, db)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should create the validation_runs table", func() {
			err := migrations.Run(ctx, db)
			Expect(err).NotTo(HaveOccurred())

			// Verify the table exists by inserting data
			_, err = db.ExecContext(ctx, `
				INSERT INTO validation_runs
					(id, connection_name, variant, target_url, deployment_name, status, stages, started_at, finished_at)
				VALUES
					('3d9bfc90-0000-4000-8000-000000000001', 'conn-a', 'apim', 'https://gw', 'gpt-4o', 'passed', '[]', now(), now())
			`)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should create the connection_health table", func() {
			err := migrations.Run(ctx, db)
			Expect(err).NotTo(HaveOccurred())

			_, err = db.ExecContext(ctx, `
				INSERT INTO connection_health
					(connection_name, variant, target_url, last_status, last_latency_ms, consecutive_failures, last_checked_at)
				VALUES
					('conn-a', 'apim', 'https://gw', 'passed', 120, 0, now())
			`)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should be idempotent", func() {
			err := migrations.Run(ctx, db)
			Expect(err).NotTo(HaveOccurred())

			err = migrations.Run(ctx, db)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should track applied migrations in schema_migrations table", func() {
			err := migrations.Run(ctx, db)
			Expect(err).NotTo(HaveOccurred())

			var version int
			err = db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version)
			Expect(err).NotTo(HaveOccurred())
			Expect(version).To(BeNumerically(">=", 1))
		})
	})
})
