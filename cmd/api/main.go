package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eclat-backend/internal/auth"
	"eclat-backend/internal/blog"
	"eclat-backend/internal/cache"
	"eclat-backend/internal/clients"
	"eclat-backend/internal/config"
	"eclat-backend/internal/db"
	"eclat-backend/internal/handlers"
	"eclat-backend/internal/invoices"
	"eclat-backend/internal/media"
	"eclat-backend/internal/middleware"
	"eclat-backend/internal/notifications"
	"eclat-backend/internal/quotes"
	"eclat-backend/internal/reservations"
	"eclat-backend/internal/users"
	"eclat-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected")
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cacheStore cache.Cache = cache.NewNoop()
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("redis connected", slog.String("addr", cfg.RedisAddr))
		cacheStore = redisCache
	}

	tokens := &auth.Manager{
		Secret: []byte(cfg.JWTSecret),
		TTL:    time.Duration(cfg.TokenTTLHours) * time.Hour,
		Issuer: "eclat-backend",
	}

	val := validation.New()

	server := &handlers.Server{
		Cfg:   cfg,
		Cols:  cols,
		Val:   val,
		Log:   logger,
		Cache: cacheStore,
	}

	clientsRepo := clients.NewRepository(cols.Clients)
	clientsService := clients.NewService(clientsRepo, cfg.Timezone)
	clientsHandler := clients.NewHandler(clientsService, val, logger)

	usersRepo := users.NewRepository(cols.Users)
	usersService := users.NewService(usersRepo, tokens,
		func(ctx context.Context, email, firstName, lastName string) (string, error) {
			client, err := clientsService.EnsureForUser(ctx, email, firstName, lastName)
			if err != nil {
				return "", err
			}
			return client.ID, nil
		}, cfg.Timezone)
	usersHandler := users.NewHandler(usersService, val, logger)

	existsIn := func(col *mongo.Collection, filter bson.M) reservations.ExistsFunc {
		return func(ctx context.Context, id string) (bool, error) {
			query := bson.M{"_id": id}
			for k, v := range filter {
				query[k] = v
			}
			n, err := col.CountDocuments(ctx, query)
			return n > 0, err
		}
	}

	brevo := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.BrevoSandbox)
	if brevo == nil {
		logger.Info("brevo mailer disabled")
	} else {
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
	}
	mailer := notifications.NewReservationMailer(brevo,
		func(ctx context.Context, clientID string) (notifications.Recipient, error) {
			var c clients.Client
			if err := cols.Clients.FindOne(ctx, bson.M{"_id": clientID}).Decode(&c); err != nil {
				return notifications.Recipient{}, err
			}
			return notifications.Recipient{Name: c.FirstName + " " + c.LastName, Email: c.Email}, nil
		},
		func(ctx context.Context, reservation reservations.Reservation) (string, error) {
			var doc struct {
				Name string `bson:"name"`
			}
			col, id := cols.Services, reservation.ServiceID
			if reservation.FormationID != "" {
				col, id = cols.Formations, reservation.FormationID
			}
			if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
				return "", err
			}
			return doc.Name, nil
		})

	reservationsRepo := reservations.NewRepository(cols.Reservations)
	reservationsService := reservations.NewService(reservationsRepo,
		existsIn(cols.Clients, nil),
		existsIn(cols.Services, bson.M{"isActive": true}),
		existsIn(cols.Formations, bson.M{"isActive": true}),
		cfg.Timezone)
	var confirmationSender reservations.ConfirmationSender
	if mailer != nil {
		confirmationSender = mailer
	}
	reservationsHandler := reservations.NewHandler(reservationsService, val, logger, confirmationSender)

	invoicesRepo := invoices.NewRepository(cols.Invoices)
	invoicesService := invoices.NewService(invoicesRepo, cfg.Timezone)
	invoicesHandler := invoices.NewHandler(invoicesService, val, logger)

	quotesRepo := quotes.NewRepository(cols.Quotes)
	quotesService := quotes.NewService(quotesRepo, cfg.Timezone)
	quotesHandler := quotes.NewHandler(quotesService, val, logger)

	blogRepo := blog.NewRepository(cols.Posts)
	blogService := blog.NewService(blogRepo, cfg.Timezone)
	blogHandler := blog.NewHandler(blogService, val, logger, cacheStore, time.Duration(cfg.CacheTTLSeconds)*time.Second)

	mediaRepo := media.NewRepository(cols.Media)
	mediaService := media.NewService(mediaRepo, cfg.Timezone)
	mediaHandler := media.NewHandler(mediaService, val, logger)

	r := newRouter(cfg, tokens, logger, server, usersHandler, clientsHandler,
		reservationsHandler, invoicesHandler, quotesHandler, blogHandler, mediaHandler)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}

// newRouter mounts every route. Guarded CRUD shares the public /api/<resource>
// prefixes with the guard attached per sub-router, so an unauthenticated write
// fails with 401 rather than 405.
func newRouter(
	cfg *config.Config,
	tokens *auth.Manager,
	logger *slog.Logger,
	server *handlers.Server,
	usersHandler *users.Handler,
	clientsHandler *clients.Handler,
	reservationsHandler *reservations.Handler,
	invoicesHandler *invoices.Handler,
	quotesHandler *quotes.Handler,
	blogHandler *blog.Handler,
	mediaHandler *media.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.FrontendOrigin))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	window := time.Duration(cfg.RateLimitWindowSec) * time.Second
	authLimiter := middleware.NewRateLimiter(cfg.RateLimitAuth, window)
	contactLimiter := middleware.NewRateLimiter(cfg.RateLimitContact, window)
	reservationsLimiter := middleware.NewRateLimiter(cfg.RateLimitReservations, window)

	r.Route("/api", func(api chi.Router) {
		api.With(authLimiter.Middleware).Post("/auth/register", usersHandler.Register)
		api.With(authLimiter.Middleware).Post("/auth/login", usersHandler.Login)
		api.With(middleware.RequireAuth(tokens)).Get("/auth/me", usersHandler.Me)

		api.Get("/services", server.GetServices)
		api.Get("/services/{id}", server.GetService)
		api.Get("/formations", server.GetFormations)
		api.Get("/formations/{id}", server.GetFormation)
		api.Get("/team", server.GetTeam)
		api.Get("/testimonials", server.GetTestimonials)
		api.With(contactLimiter.Middleware).Post("/testimonials", server.CreateTestimonial)
		api.With(contactLimiter.Middleware).Post("/contact", server.CreateContactMessage)
		api.Get("/content", server.GetContent)
		api.Get("/posts", blogHandler.PublicList)
		api.Get("/posts/{slug}", blogHandler.PublicGetBySlug)

		api.Get("/reservations/availability", reservationsHandler.Availability)
		api.With(middleware.RequireAuth(tokens), reservationsLimiter.Middleware).
			Post("/reservations", reservationsHandler.Create)

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth(tokens))
			protected.Use(middleware.RequireAdmin)

			protected.Post("/services", server.CreateService)
			protected.Put("/services/{id}", server.UpdateService)
			protected.Delete("/services/{id}", server.DeleteService)

			protected.Post("/formations", server.CreateFormation)
			protected.Put("/formations/{id}", server.UpdateFormation)
			protected.Delete("/formations/{id}", server.DeleteFormation)

			protected.Post("/team", server.CreateTeamMember)
			protected.Put("/team/{id}", server.UpdateTeamMember)
			protected.Delete("/team/{id}", server.DeleteTeamMember)

			protected.Delete("/testimonials/{id}", server.DeleteTestimonial)
			protected.Put("/content/{key}", server.UpsertContent)

			protected.Get("/clients", clientsHandler.List)
			protected.Get("/clients/{id}", clientsHandler.Get)
			protected.Post("/clients", clientsHandler.Create)
			protected.Put("/clients/{id}", clientsHandler.Update)
			protected.Delete("/clients/{id}", clientsHandler.Delete)

			protected.Get("/reservations", reservationsHandler.List)
			protected.Get("/reservations/{id}", reservationsHandler.Get)
			protected.Put("/reservations/{id}", reservationsHandler.Update)
			protected.Patch("/reservations/{id}/status", reservationsHandler.UpdateStatus)
			protected.Delete("/reservations/{id}", reservationsHandler.Delete)

			protected.Get("/invoices", invoicesHandler.List)
			protected.Get("/invoices/{id}", invoicesHandler.Get)
			protected.Post("/invoices", invoicesHandler.Create)
			protected.Put("/invoices/{id}", invoicesHandler.Update)
			protected.Delete("/invoices/{id}", invoicesHandler.Delete)

			protected.Get("/quotes", quotesHandler.List)
			protected.Get("/quotes/{id}", quotesHandler.Get)
			protected.Post("/quotes", quotesHandler.Create)
			protected.Put("/quotes/{id}", quotesHandler.Update)
			protected.Delete("/quotes/{id}", quotesHandler.Delete)

			protected.Post("/posts", blogHandler.AdminCreate)
			protected.Put("/posts/{id}", blogHandler.AdminUpdate)
			protected.Delete("/posts/{id}", blogHandler.AdminDelete)

			protected.Get("/media", mediaHandler.List)
			protected.Get("/media/{id}", mediaHandler.Get)
			protected.Post("/media", mediaHandler.Create)
			protected.Put("/media/{id}", mediaHandler.Update)
			protected.Delete("/media/{id}", mediaHandler.Delete)
		})

		// Listings that need a shape the public route does not expose:
		// every post including drafts, and the contact inbox.
		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.RequireAuth(tokens))
			admin.Use(middleware.RequireAdmin)

			admin.Get("/posts", blogHandler.AdminList)
			admin.Get("/contacts", server.ListContactMessages)
		})
	})

	return r
}
