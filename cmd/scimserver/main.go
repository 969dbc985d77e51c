// Command scimserver runs a small SCIM server that lists users from an
// in-memory SQLite database. It exists to exercise filter parsing, query
// translation and the observability hooks end to end:
//
//	go run ./cmd/scimserver
//	curl 'http://localhost:8080/Users?filter=userName+eq+%22bjensen%22'
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	servertiming "github.com/mitchellh/go-server-timing"
	scim "github.com/nlstn/go-scim"
	"github.com/nlstn/go-scim/internal/observability"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	scim.SetLogger(logger)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(&User{}, &UserEmail{}, &UserPhone{}); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	users := sampleUsers()
	if err := db.Create(&users).Error; err != nil {
		logger.Error("failed to seed database", "error", err)
		os.Exit(1)
	}
	logger.Info("database seeded", "users", len(users))

	obs := observability.NewConfig(
		observability.WithServiceName("scimserver"),
		observability.WithServerTiming(),
	)
	if err := obs.Initialize(); err != nil {
		logger.Error("failed to initialize observability", "error", err)
		os.Exit(1)
	}
	if err := observability.RegisterGORMCallbacks(db, obs); err != nil {
		logger.Error("failed to register trace callbacks", "error", err)
		os.Exit(1)
	}
	if err := observability.RegisterServerTimingCallbacks(db); err != nil {
		logger.Error("failed to register timing callbacks", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/Users", listUsersHandler(db, logger, obs))

	var handler http.Handler = dbTimeMiddleware(mux)
	handler = observability.HTTPMiddleware(obs)(handler)
	handler = servertiming.Middleware(handler, nil)

	addr := ":8080"
	if v := os.Getenv("SCIM_ADDR"); v != "" {
		addr = v
	}

	fmt.Printf("SCIM server running at http://localhost%s/Users\n", addr)
	fmt.Println()
	fmt.Println("Example query parameters:")
	fmt.Println(`  filter=userName eq "bjensen"`)
	fmt.Println(`  filter=name.familyName co "Jen" and active eq true`)
	fmt.Println(`  filter=emails[type eq "work" and value ew "@example.com"]`)
	fmt.Println(`  sortBy=name.familyName&sortOrder=descending&startIndex=1&count=2`)
	fmt.Println()

	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// dbTimeMiddleware gives every request its own database time accumulator,
// which the gorm callbacks feed and the handler reports as Server-Timing.
func dbTimeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.WithDBTimeAccumulator(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
