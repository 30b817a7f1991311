package routes

import (
	"github.com/Dosada05/tournament-archive/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	archiveHandler *handlers.ArchiveHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/tournaments", func(r chi.Router) {
		r.Post("/{tournamentID}/archive", archiveHandler.Archive)
		r.Delete("/{tournamentID}", archiveHandler.ReconcileDeletion)
	})

	router.Route("/archives", func(r chi.Router) {
		r.Get("/", archiveHandler.ListArchives)
		r.Get("/{tournamentID}", archiveHandler.GetArchive)
		r.Delete("/{tournamentID}", archiveHandler.DeleteArchive)
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
