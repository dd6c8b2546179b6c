package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/forcemodel/forcesim-backend-go/internal/config"
	appHTTP "github.com/forcemodel/forcesim-backend-go/internal/handler/http"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/database"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/jwt"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/sse"
	"github.com/forcemodel/forcesim-backend-go/internal/repository/postgresql"
	"github.com/forcemodel/forcesim-backend-go/internal/service/simulation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	logLevel := slog.LevelInfo
	if cfg.App.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))

	runRepo := postgresql.NewRunRepository(db)
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	hub := sse.NewHub()

	simService := simulation.New(db, runRepo, hub, logger)

	authHandler := appHTTP.NewAuthHandler(JWTService, cfg.Auth.APIKey)
	simHandler := appHTTP.NewSimulationHandler(simService, JWTService)

	router := appHTTP.NewRouter(cfg.App.Env, JWTService, authHandler, simHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
