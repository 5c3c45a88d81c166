package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/google/uuid"

	emailPkg "volunteerhub/internal/adapters/email"
	web "volunteerhub/internal/adapters/http"
	"volunteerhub/internal/adapters/presence"
	"volunteerhub/internal/adapters/storage"
	accountStore "volunteerhub/internal/adapters/storage/account"
	notificationStore "volunteerhub/internal/adapters/storage/notification"
	opportunityStore "volunteerhub/internal/adapters/storage/opportunity"
	organizationStore "volunteerhub/internal/adapters/storage/organization"
	volunteerStore "volunteerhub/internal/adapters/storage/volunteer"
	"volunteerhub/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// WAL mode, foreign keys, and a busy timeout keep the capacity and
	// completion writes safe under concurrent requests.
	dbPath := envOrDefault("VOLUNTEERHUB_DB", "volunteerhub.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	log.Println("Database initialized successfully!")

	timedDB := storage.NewTimedDB(db)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:      acctStore,
		OpportunityStore:  opportunityStore.NewSQLiteStore(timedDB),
		VolunteerStore:    volunteerStore.NewSQLiteStore(timedDB),
		OrganizationStore: organizationStore.NewSQLiteStore(timedDB),
		NotificationStore: notificationStore.NewSQLiteStore(timedDB),
	}

	// Seed the admin account when credentials are configured; idempotent.
	seedInput := orchestrators.SeedAdminInput{
		Email:    os.Getenv("VOLUNTEERHUB_ADMIN_EMAIL"),
		Password: os.Getenv("VOLUNTEERHUB_ADMIN_PASSWORD"),
	}
	seedDeps := orchestrators.SeedAdminDeps{
		AccountStore: acctStore,
		GenerateID:   func() string { return uuid.New().String() },
		Now:          time.Now,
	}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedInput, seedDeps); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Configure email sender
	resendKey := os.Getenv("VOLUNTEERHUB_RESEND_KEY")
	emailFrom := envOrDefault("VOLUNTEERHUB_RESEND_FROM", "VolunteerHub <noreply@volunteerhub.example>")
	emailReply := envOrDefault("VOLUNTEERHUB_REPLY_TO", "hello@volunteerhub.example")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom, emailReply)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom, emailReply)
		if os.Getenv("VOLUNTEERHUB_ENV") == "production" {
			log.Println("WARNING: VOLUNTEERHUB_RESEND_KEY is not set, email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop, set VOLUNTEERHUB_RESEND_KEY for real delivery)")
		}
	}

	registry := presence.NewRegistry()
	mux := web.NewMux(stores, registry)

	addr := envOrDefault("VOLUNTEERHUB_ADDR", ":8080")
	log.Printf("VolunteerHub %s starting on %s (env=%s)", version, addr, envOrDefault("VOLUNTEERHUB_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
