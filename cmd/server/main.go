package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	hrauth "github.com/peoplekit/go-hrauth"
)

// protectedRoutes is the single source of truth for role-gated paths.
// A path missing from the map only requires a valid token.
var protectedRoutes = hrauth.RouteRoles{
	"/api/employees":      {hrauth.RoleEmployee, hrauth.RoleManager, hrauth.RoleAdmin},
	"/api/reports":        {hrauth.RoleManager, hrauth.RoleAdmin},
	"/api/admin/accounts": {hrauth.RoleAdmin},
}

func main() {
	logger := hrauth.NewAppLogger("SERVER")

	config := hrauth.LoadConfig(logger)

	if config.GetSigningKey() == "" {
		log.Fatal("SIGNING_KEY is required")
	}

	db, err := openDatabase(config.GetDatabaseDSN())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()

	if err := createSchema(ctx, db); err != nil {
		log.Fatal(err)
	}

	repo := hrauth.NewRepositoryManager(db)
	repo.MustValidate()

	if err := hrauth.SeedRoles(ctx, repo.Roles()); err != nil {
		log.Fatal(err)
	}

	tokens := hrauth.NewTokenService(
		[]byte(config.GetSigningKey()),
		config.GetTokenExpiration(),
		config.GetIssuer(),
		logger,
	)

	auther := hrauth.NewAuthenticator(repo, tokens).WithLogger(logger)

	app := fiber.New(fiber.Config{
		AppName:      "hrauth",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	hrauth.RegisterAuthRoutes(app,
		hrauth.WithControllerLogger(logger),
		hrauth.WithControllerRepo(repo),
		hrauth.WithControllerAuther(auther),
		hrauth.WithControllerMailer(buildMailer(config, logger)),
		hrauth.WithControllerMinPasswordLength(config.GetMinPasswordLength()),
		hrauth.WithControllerResetCodeTTL(config.GetResetCodeTTL()),
	)

	api := app.Group("/api",
		hrauth.RequireAuth(tokens, hrauth.WithGateLogger(logger)),
		hrauth.RequireRoles(protectedRoutes, hrauth.WithGateLogger(logger)),
	)

	api.Get("/employees", listEmployees(repo))
	api.Get("/reports", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"reports": []string{}})
	})
	api.Get("/admin/accounts", listAccounts(repo))

	go func() {
		if err := app.Listen(config.GetHTTPAddr()); err != nil {
			log.Fatal(err)
		}
	}()

	logger.Info("listening", "addr", config.GetHTTPAddr())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func openDatabase(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	// The m2m join model must be registered before any query uses the
	// Roles relation.
	db.RegisterModel((*hrauth.AccountRole)(nil))

	return db, nil
}

func createSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*hrauth.Account)(nil),
		(*hrauth.Role)(nil),
		(*hrauth.AccountRole)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}

func buildMailer(config hrauth.Config, logger hrauth.Logger) hrauth.Mailer {
	if config.GetSMTPHost() == "" {
		logger.Warn("SMTP not configured, reset codes will be logged")
		return hrauth.NewLogMailer(logger)
	}

	return hrauth.NewSMTPMailer(
		config.GetSMTPHost(),
		config.GetSMTPPort(),
		config.GetSMTPUsername(),
		config.GetSMTPPassword(),
		config.GetMailFrom(),
	)
}

func listEmployees(repo hrauth.RepositoryManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := hrauth.ClaimsFromFiber(c, hrauth.DefaultClaimsContextKey)
		if !ok {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.JSON(fiber.Map{
			"viewer": claims.Subject(),
			"roles":  claims.RoleNames(),
		})
	}
}

func listAccounts(repo hrauth.RepositoryManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accounts, err := repo.Accounts().List(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list accounts",
			})
		}
		return c.JSON(fiber.Map{"accounts": accounts})
	}
}
