package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-snake/auth"
	"portfolio-snake/config"
	"portfolio-snake/constants"
	"portfolio-snake/game"
	"portfolio-snake/handlers"
	"portfolio-snake/leaderboard"
	"portfolio-snake/storage"
	"portfolio-snake/webrtc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	kv, closeStore, err := openStore(cfg.StorePath)
	if err != nil {
		log.Fatalf("Store error: %v", err)
	}
	defer closeStore()

	board := leaderboard.NewStore(kv)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.AdminUser, cfg.AdminPassword, constants.ADMIN_SESSION)

	gameConfig := game.DefaultConfig()
	gameConfig.TickRate = cfg.TickRate
	gameManager := game.NewManager(board, issuer, gameConfig)
	webrtcManager := webrtc.NewManager(cfg.STUNURLs, handlers.WebRTCEvents(gameManager))

	wsHandler := handlers.NewWebSocketHandler(gameManager, cfg.AllowedOrigin)
	webrtcHandler := handlers.NewWebRTCHandler(webrtcManager, cfg.AllowedOrigin)
	leaderboardHandler := handlers.NewLeaderboardHandler(board, issuer, cfg.AllowedOrigin)
	authHandler := handlers.NewAuthHandler(issuer, constants.ADMIN_SESSION, cfg.AllowedOrigin)

	mux := http.NewServeMux()
	mux.Handle("/ws", wsHandler)
	mux.HandleFunc("/webrtc/offer", webrtcHandler.HandleOffer)
	mux.Handle("/leaderboard", leaderboardHandler)
	mux.HandleFunc("/auth/login", authHandler.HandleLogin)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		log.Printf("WebSocket endpoint: /ws")
		log.Printf("WebRTC endpoint: /webrtc/offer")
		log.Printf("Leaderboard endpoints: GET/DELETE /leaderboard, POST /auth/login")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	webrtcManager.Close()
	gameManager.Shutdown()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// openStore opens the file store at path, or an in-memory one when path is
// empty.
func openStore(path string) (storage.KV, func(), error) {
	if path == "" {
		log.Printf("STORE_PATH not set, leaderboard is kept in memory")
		return storage.NewMemory(), func() {}, nil
	}

	file, err := storage.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Leaderboard stored in %s", path)
	return file, func() {
		if err := file.Close(); err != nil {
			log.Printf("Closing store: %v", err)
		}
	}, nil
}
