package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	admin "github.com/phxbinh/admin-page"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg := admin.ConfigFromEnv()
	ctx := context.Background()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.GetDSN())
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := runMigrations(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	repos := admin.NewRepositoryManager(db)
	repos.MustValidate()

	if err := seedAdmin(ctx, repos); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	tokens := admin.NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		nil,
	)

	broker := admin.NewSessionBroker(repos.Accounts(), tokens)

	gate := admin.NewAccessGate(broker, repos.Profiles(),
		admin.WithGateActivitySink(admin.ActivitySinkFunc(func(ctx context.Context, event admin.ActivityEvent) error {
			log.Printf("activity %s user=%s", event.EventType, event.UserID)
			return nil
		})),
	)
	defer gate.Close()

	directory := admin.NewDirectory(repos.Profiles(), nil,
		admin.WithDirectorySubjectRemover(repos),
	)
	defer directory.Close()

	engine := django.NewFileSystem(http.FS(admin.GetViewsFS()), ".html")

	app := fiber.New(fiber.Config{
		Views: engine,
	})

	admin.RegisterAdminRoutes(app,
		func(c *admin.AdminController) *admin.AdminController {
			c.Gate = gate
			c.Directory = directory
			c.Debug = os.Getenv("DEBUG") != ""
			return c
		},
	)

	go func() {
		if err := app.Listen(cfg.GetListenAddr()); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	WaitExitSignal()

	if err := app.Shutdown(); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func runMigrations(ctx context.Context, db *bun.DB) error {
	migrations := admin.GetMigrationsFS()

	var files []string
	err := fs.WalkDir(migrations, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	sort.Strings(files)

	for _, file := range files {
		content, err := fs.ReadFile(migrations, file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("exec %s: %w", file, err)
		}
	}

	return nil
}

// seedAdmin provisions the bootstrap administrator when ADMIN_EMAIL and
// ADMIN_PASSWORD are set. Re-runs are no-ops for existing records.
func seedAdmin(ctx context.Context, repos admin.RepositoryManager) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	hash, err := admin.HashPassword(password)
	if err != nil {
		return err
	}

	account := &admin.Account{Email: email, PasswordHash: hash}
	profile := &admin.Profile{Email: email, Role: admin.RoleAdmin}

	if id, err := hashid.NewUUID(email); err == nil {
		account.ID = id
		profile.ID = id
	}

	if _, err := repos.Accounts().GetOrCreate(ctx, account); err != nil {
		return err
	}

	if _, err := repos.Profiles().GetOrCreate(ctx, profile); err != nil {
		return err
	}

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
