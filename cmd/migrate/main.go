package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"

	"github.com/kevin2-cyber/ligera-sub001/internal/infra/config"
)

func main() {
	var (
		source = flag.String("source", "file://migrations", "migration source URL")
		down   = flag.Bool("down", false, "roll back all migrations instead of applying them")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	migrator, err := migrate.New(*source, buildPostgresURL(cfg))
	if err != nil {
		log.Fatalf("init migrator failed: %v", err)
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if *down {
		err = migrator.Down()
	} else {
		err = migrator.Up()
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("no migration changes")
			return
		}
		log.Fatalf("migration failed: %v", err)
	}

	log.Println("migrations applied")
}

func buildPostgresURL(cfg *config.AppConfig) string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", cfg.Postgres.Host, cfg.Postgres.Port),
		User:   url.UserPassword(cfg.Postgres.User, cfg.Postgres.Password),
		Path:   cfg.Postgres.Database,
	}
	q := u.Query()
	q.Set("sslmode", cfg.Postgres.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
