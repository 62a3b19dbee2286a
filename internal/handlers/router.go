package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/handlers/middleware"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/handlers/render"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/logger"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/models"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/repository"
)

type RouterConfig struct {
	// If not set than no-op logger is used
	Logger logger.Logger

	// If not set than requests are not measured and /metrics is not served
	Metrics metricsCollector

	// Origins allowed to call the API from browser
	// If empty than cross origin requests are not allowed
	CORSOrigins []string
}

func NewRouter(
	cfg RouterConfig,
	authService authService,
	userService userService,
	postService postService,
	commentService commentService,
) http.Handler {
	l := cfg.Logger
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.LoggerMiddleware(l))
	r.Use(chimiddleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	// cors allows any origin for empty list, so it is not mounted at all then
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		render.ServiceError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		render.ServiceError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	r.Method(http.MethodGet, "/health", handleHealth())
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	withAuth := middleware.AuthMiddleware(authService, l)

	r.Route("/auth", func(r chi.Router) {
		r.Method(http.MethodPost, "/register", handleRegister(authService, l))
		r.Method(http.MethodPost, "/login", handleLogin(authService, l))
		r.Method(http.MethodPost, "/refresh", handleRefresh(authService, l))
		r.With(withAuth).Method(http.MethodPost, "/logout", handleLogout(authService, l))
	})

	r.Group(func(r chi.Router) {
		r.Use(withAuth)

		r.Route("/users", func(r chi.Router) {
			r.Method(http.MethodGet, "/", handleListUsers(userService, l))
			r.Method(http.MethodGet, "/{user_id}", handleGetUser(userService, l))
			r.Method(http.MethodPut, "/{user_id}", handleUpdateUser(userService, l))
			r.Method(http.MethodDelete, "/{user_id}", handleDeleteUser(userService, authService, l))
		})

		r.Route("/posts", func(r chi.Router) {
			r.Method(http.MethodPost, "/", handleCreatePost(postService, l))
			r.Method(http.MethodGet, "/", handleListPosts(postService, l))
			r.Method(http.MethodGet, "/{post_id}", handleGetPost(postService, l))
			r.Method(http.MethodPut, "/{post_id}", handleUpdatePost(postService, l, false))
			r.Method(http.MethodPatch, "/{post_id}", handleUpdatePost(postService, l, true))
		})

		r.Route("/comments", func(r chi.Router) {
			r.Method(http.MethodPost, "/", handleCreateComment(commentService, l))
			r.Method(http.MethodGet, "/", handleListComments(commentService, l))
			r.Method(http.MethodGet, "/{comment_id}", handleGetComment(commentService, l))
			r.Method(http.MethodPut, "/{comment_id}", handleUpdateComment(commentService, l))
			r.Method(http.MethodDelete, "/{comment_id}", handleDeleteComment(commentService, l))
		})
	})

	return r
}

func handleHealth() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		render.JSON(w, map[string]string{"status": "ok"})
	})
}

type metricsCollector interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

type authService interface {
	// Has to return apperrors.ErrUserAlreadyExists if email or username is taken
	Register(ctx context.Context, username string, email string, password string) (models.User, error)

	// Has to return apperrors.ErrInvalidCredentials if email is unknown or password is wrong
	Login(ctx context.Context, email string, password string) (models.Session, error)

	// Has to return apperrors.ErrInvalidRefreshToken if refresh token can't be used
	Refresh(ctx context.Context, refresh string) (models.IssuedToken, error)

	// Empty refresh token revokes every session of the user
	// Has to return apperrors.ErrRefreshTokenNotFound if refresh token is unknown or belongs to other user
	Logout(ctx context.Context, userID uuid.UUID, refresh string) error

	// Has to return apperrors.ErrTokenInvalid, apperrors.ErrTokenExpired or apperrors.ErrTokenBlacklisted
	Authenticate(ctx context.Context, access string) (models.Claims, error)
}

type userService interface {
	GetUser(ctx context.Context, userID uuid.UUID) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, actorID uuid.UUID, userID uuid.UUID, params repository.UpdateUserParams) (models.User, error)
	DeleteUser(ctx context.Context, actorID uuid.UUID, userID uuid.UUID) error
}

type postService interface {
	CreatePost(ctx context.Context, ownerID uuid.UUID, title string, content string) (models.Post, error)
	GetPost(ctx context.Context, postID uuid.UUID) (models.Post, error)
	ListPosts(ctx context.Context, opts repository.ListPostsOpts) ([]models.Post, error)
	UpdatePost(ctx context.Context, actorID uuid.UUID, postID uuid.UUID, params repository.UpdatePostParams) (models.Post, error)
}

type commentService interface {
	CreateComment(ctx context.Context, authorID uuid.UUID, postID uuid.UUID, content string) (models.Comment, error)
	GetComment(ctx context.Context, commentID uuid.UUID) (models.Comment, error)
	ListComments(ctx context.Context, opts repository.ListCommentsOpts) ([]models.Comment, error)
	UpdateComment(ctx context.Context, actorID uuid.UUID, commentID uuid.UUID, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, actorID uuid.UUID, commentID uuid.UUID) error
}
