package handlers

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

func (h *Handler) SetRoutes(r chi.Router) {
	r.Get("/health", h.HealthHandler)

	r.Route("/api/v1", func(r chi.Router) {

		// public routes
		r.Post("/users", h.RegisterUser)
		r.Post("/users/login", h.Login)
		r.Post("/users/otp/request", h.RequestOTP)
		r.Post("/users/otp/verify", h.VerifyOTP)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokens.JWTAuth()))
			r.Use(h.Authenticator)

			r.Get("/users", h.ListUsers)
			r.Get("/users/{id}", h.GetUser)

			r.Route("/cards", func(r chi.Router) {
				r.Post("/", h.CreateCard)
				r.Get("/", h.ListCards)
				r.Get("/{id}", h.GetCard)
				r.Patch("/{id}", h.UpdateCard)
				r.Delete("/{id}", h.DeleteCard)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Post("/", h.CreateTag)
				r.Get("/", h.ListTags)
				r.Post("/assign", h.AssignTags)
				r.Get("/cards/{id}", h.ListCardTags)
				r.Get("/cards/{id}/versions", h.ListCardVersions)
			})

			r.Route("/documents", func(r chi.Router) {
				r.Post("/", h.CreateDocument)
				r.Get("/", h.ListDocuments)
				r.Get("/{id}", h.GetDocument)
				r.Patch("/{id}", h.UpdateDocument)
				r.Delete("/{id}", h.DeleteDocument)
				r.Post("/{id}/cards", h.AddDocumentCard)
				r.Get("/{id}/cards", h.ListDocumentCards)
			})
		})
	})
}
