package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"volunteerhub/internal/adapters/email"
	"volunteerhub/internal/adapters/http/middleware"
	"volunteerhub/internal/adapters/presence"
	accountStore "volunteerhub/internal/adapters/storage/account"
	notificationStore "volunteerhub/internal/adapters/storage/notification"
	opportunityStore "volunteerhub/internal/adapters/storage/opportunity"
	organizationStore "volunteerhub/internal/adapters/storage/organization"
	volunteerStore "volunteerhub/internal/adapters/storage/volunteer"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore      accountStore.Store
	OpportunityStore  opportunityStore.Store
	VolunteerStore    volunteerStore.Store
	OrganizationStore organizationStore.Store
	NotificationStore notificationStore.Store
}

// loadCSRFKey reads the CSRF secret from VOLUNTEERHUB_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("VOLUNTEERHUB_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("VOLUNTEERHUB_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("VOLUNTEERHUB_ENV") == "production" {
		log.Fatal("VOLUNTEERHUB_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set VOLUNTEERHUB_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global presence registry for live event streams (set by NewMux)
var presenceRegistry *presence.Registry

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var emailReplyTo string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
}

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, registry *presence.Registry) http.Handler {
	stores = s
	presenceRegistry = registry
	sessions = middleware.NewSessionStore()

	mux := http.NewServeMux()
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Auth -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
	)
}
