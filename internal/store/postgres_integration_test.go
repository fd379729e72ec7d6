// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

//go:build integration

package store_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/authgate/authgate/internal/auth"
	authpg "github.com/authgate/authgate/internal/auth/postgres"
	"github.com/authgate/authgate/internal/store"
)

// setupPostgres starts a PostgreSQL container, connects a pool and runs
// all migrations.
func setupPostgres() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("authgate_test"),
		postgres.WithUsername("authgate"),
		postgres.WithPassword("authgate"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, err
	}
	if err := migrator.Close(); err != nil {
		return nil, nil, err
	}

	pool, err := store.Connect(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup, nil
}

var _ = Describe("IdentityRepository", func() {
	var pool *pgxpool.Pool
	var repo *authpg.IdentityRepository
	var cleanup func()

	BeforeEach(func() {
		var err error
		pool, cleanup, err = setupPostgres()
		Expect(err).NotTo(HaveOccurred())
		repo = authpg.NewIdentityRepository(pool)
	})

	AfterEach(func() {
		cleanup()
	})

	newIdentity := func(email string) *auth.Identity {
		identity, err := auth.NewIdentity(email, "$argon2id$fake", auth.RoleStandard, "users")
		Expect(err).NotTo(HaveOccurred())
		return identity
	}

	Describe("Create", func() {
		It("persists an identity and reads it back", func() {
			ctx := context.Background()
			identity := newIdentity("ada@example.com")

			Expect(repo.Create(ctx, identity)).To(Succeed())

			got, err := repo.GetByEmail(ctx, "ada@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(identity.ID))
			Expect(got.Email).To(Equal("ada@example.com"))
			Expect(got.Role).To(Equal(auth.RoleStandard))
			Expect(got.Group).To(Equal("users"))

			byID, err := repo.GetByID(ctx, identity.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(byID.Email).To(Equal(got.Email))
		})

		It("enforces email uniqueness at the database level", func() {
			ctx := context.Background()
			Expect(repo.Create(ctx, newIdentity("dup@example.com"))).To(Succeed())

			err := repo.Create(ctx, newIdentity("dup@example.com"))
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, auth.ErrDuplicateEmail)).To(BeTrue())
		})

		It("rejects roles outside the schema check constraint", func() {
			ctx := context.Background()
			identity := newIdentity("rogue@example.com")
			identity.Role = auth.Role("superuser")

			Expect(repo.Create(ctx, identity)).NotTo(Succeed())
		})
	})

	Describe("GetByEmail", func() {
		It("reports not found for unknown emails", func() {
			_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
			Expect(errors.Is(err, auth.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("ExistsByEmail", func() {
		It("distinguishes present and absent emails", func() {
			ctx := context.Background()
			Expect(repo.Create(ctx, newIdentity("here@example.com"))).To(Succeed())

			exists, err := repo.ExistsByEmail(ctx, "here@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())

			exists, err = repo.ExistsByEmail(ctx, "gone@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})

	Describe("Readiness", func() {
		It("reports ready while the pool is open", func() {
			probe := store.Readiness(pool)
			Expect(probe()).To(BeTrue())
		})
	})
})
