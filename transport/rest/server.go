package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

type roomReader interface {
	Snapshot(roomID string) (*usecase.RoomSnapshot, error)
}

type resultReader interface {
	ListByRoomID(ctx context.Context, roomID string) ([]*entity.GameResult, error)
}

type Server struct {
	logger  *slog.Logger
	rooms   roomReader
	results resultReader
	metrics http.Handler
}

func New(logger *slog.Logger, rooms roomReader, results resultReader, metrics http.Handler) *Server {
	return &Server{
		logger:  logger.With("component", "rest"),
		rooms:   rooms,
		results: results,
		metrics: metrics,
	}
}

func (that *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/ping", pingHandler).Methods(http.MethodGet)
	router.Handle("/metrics", that.metrics).Methods(http.MethodGet)
	router.HandleFunc("/rooms/{roomID}", that.getRoom).Methods(http.MethodGet)
	router.HandleFunc("/rooms/{roomID}/results", that.getResults).Methods(http.MethodGet)

	return router
}

// Start - starts HTTP server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
