package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"recipe-admin/internal/config"
	"recipe-admin/internal/handler"
	"recipe-admin/internal/middleware"
)

type Handlers struct {
	Pages         *handler.PageHandler
	Auth          *handler.AuthHandler
	Recipes       *handler.RecipeHandler
	Editor        *handler.EditorHandler
	Comments      *handler.CommentHandler
	Users         *handler.UserHandler
	Notifications *handler.NotificationHandler
	Storage       *handler.StorageHandler
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

func New(cfg *config.Config, guard *middleware.SessionGuard, h Handlers, health HealthCheck) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			if err := health(req.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unhealthy"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/storage/o/*", h.Storage.Object)

	r.Group(func(public chi.Router) {
		public.Use(middleware.Timeout(cfg.RequestTimeout))
		public.With(guard.RedirectAuthenticated("/")).Get(middleware.LoginPath, h.Pages.LoginPage)
		public.Post(middleware.LoginPath, h.Pages.LoginSubmit)
		public.Post("/logout", h.Pages.Logout)
	})

	r.Group(func(pages chi.Router) {
		pages.Use(middleware.Timeout(cfg.RequestTimeout))
		pages.Use(guard.RequireSession)
		pages.Get("/", h.Pages.Dashboard)
		pages.Get("/recipes", h.Pages.Recipes)
		pages.Get("/users", h.Pages.Users)
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Auth.Login)
			auth.Post("/forgot-password", h.Auth.ForgotPassword)
			auth.Post("/reset-password", h.Auth.ResetPassword)
			auth.Get("/session", h.Auth.Session)
			auth.With(guard.RequireSession).Post("/logout", h.Auth.Logout)
			auth.With(guard.RequireSession).Get("/me", h.Auth.Me)
			auth.With(guard.RequireSession).Get("/check", h.Auth.Check)
			auth.With(guard.RequireSession).Get("/permissions", h.Auth.Permissions)
		})

		api.Group(func(private chi.Router) {
			private.Use(guard.RequireSession)

			private.Get("/notifications", h.Notifications.Drain)

			private.Route("/recipes", func(recipes chi.Router) {
				recipes.Get("/", h.Recipes.List)
				recipes.Post("/refresh", h.Recipes.Refresh)
				recipes.Put("/search", h.Recipes.SetSearch)
				recipes.Post("/search", h.Recipes.SearchNow)
				recipes.Delete("/search", h.Recipes.ClearSearch)
				recipes.Get("/{id}", h.Recipes.Get)
				recipes.Delete("/{id}", h.Recipes.Delete)

				recipes.Route("/{id}/comments", func(comments chi.Router) {
					comments.Post("/open", h.Comments.Open)
				})
			})

			private.Route("/editor", func(editor chi.Router) {
				editor.Get("/", h.Editor.State)
				editor.Post("/new", h.Editor.OpenCreate)
				editor.Post("/edit/{id}", h.Editor.OpenEdit)
				editor.Patch("/fields", h.Editor.SetFields)
				editor.Post("/ingredients", h.Editor.AddIngredient)
				editor.Put("/ingredients/{index}", h.Editor.SetIngredient)
				editor.Delete("/ingredients/{index}", h.Editor.RemoveIngredient)
				editor.Post("/steps", h.Editor.AddStep)
				editor.Put("/steps/{index}", h.Editor.SetStep)
				editor.Delete("/steps/{index}", h.Editor.RemoveStep)
				editor.Post("/steps/move", h.Editor.MoveStep)
				editor.Post("/image", h.Editor.UploadImage)
				editor.Delete("/image", h.Editor.RemoveImage)
				editor.Post("/submit", h.Editor.Submit)
				editor.Post("/cancel", h.Editor.Cancel)
			})

			private.Route("/comments", func(comments chi.Router) {
				comments.Get("/", h.Comments.State)
				comments.Post("/retry", h.Comments.Retry)
				comments.Post("/close", h.Comments.Close)
				comments.Put("/draft", h.Comments.SetDraft)
				comments.Post("/", h.Comments.Add)
				comments.Put("/edit", h.Comments.SetEditContent)
				comments.Post("/edit/save", h.Comments.SaveEdit)
				comments.Post("/edit/cancel", h.Comments.CancelEdit)
				comments.Post("/bulk", h.Comments.ToggleBulkMode)
				comments.Put("/selection", h.Comments.SelectAll)
				comments.Delete("/selection", h.Comments.BulkDelete)
				comments.Post("/{commentID}/edit", h.Comments.BeginEdit)
				comments.Put("/{commentID}/selection", h.Comments.Select)
				comments.Delete("/{commentID}", h.Comments.Delete)
			})

			private.Route("/users", func(users chi.Router) {
				users.Get("/", h.Users.List)
				users.Post("/refresh", h.Users.Refresh)
				users.Post("/form", h.Users.OpenCreate)
				users.Post("/form/{id}", h.Users.OpenEdit)
				users.Delete("/form", h.Users.CloseForm)
				users.Post("/form/submit", h.Users.Submit)
				users.Delete("/{id}", h.Users.Delete)
			})
		})
	})

	return r
}
