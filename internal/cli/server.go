package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"gamification-engine/internal/app"
	"gamification-engine/internal/config"
	"gamification-engine/internal/domain"
	"gamification-engine/internal/infra/memory"
	"gamification-engine/internal/infra/postgres"
	redisinfra "gamification-engine/internal/infra/redis"
	transport "gamification-engine/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the scoring engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	sessionTTL := config.TTLDuration(cfg.Session.TTL, 10*time.Minute)
	cacheTTL := config.TTLDuration(cfg.Redis.CacheTTL, 30*time.Second)

	var db *bun.DB
	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db = bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()

		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// Repository wiring: Postgres when configured, in-memory demo mode
	// otherwise; Redis layers in for sessions and leaderboard snapshots.
	var (
		catalogRepo     app.CatalogRepository
		gameLinks       app.LinkRepository
		userLinks       app.LinkRepository
		leaderboardRepo app.LeaderboardRepository
		rewardRepo      app.RewardRepository
		sessionRepo     app.SessionRepository
		archive         app.SessionArchive
		questionSource  app.QuestionSource
	)
	if db != nil {
		catalogRepo = postgres.NewCatalogRepository(db)
		gameLinks = postgres.NewGameLinkRepository(db)
		userLinks = postgres.NewUserLinkRepository(db)
		leaderboardRepo = postgres.NewLeaderboardRepository(db)
		rewardRepo = postgres.NewRewardRepository(db)
		archive = postgres.NewSessionArchive(db)
		questionSource = postgres.NewQuestionLoader(pool)
	} else {
		catalogRepo = memory.NewCatalogStore()
		gameLinks = memory.NewLinkStore()
		userLinks = memory.NewLinkStore()
		leaderboardRepo = memory.NewLeaderboardStore()
		rewardRepo = memory.NewRewardStore()
		questionSource = memory.NewQuestionSource(sampleQuestionBank())
	}
	if redisClient != nil {
		sessionRepo = redisinfra.NewSessionStore(redisClient, sessionTTL+time.Minute)
		leaderboardRepo = redisinfra.NewLeaderboardCache(leaderboardRepo, redisClient, cacheTTL)
	} else {
		sessionRepo = memory.NewSessionStore()
	}

	mappings := app.NewMappingService(gameLinks, userLinks, catalogRepo)
	catalog := app.NewCatalogService(catalogRepo, gameLinks, userLinks)
	leaderboard := app.NewLeaderboardService(leaderboardRepo)
	rewards := app.NewRewardService(rewardRepo, leaderboard)
	sessions := app.NewSessionService(sessionRepo, archive, questionSource, catalogRepo, mappings, leaderboard, sessionTTL)

	if db == nil {
		if err := seedDemoData(ctx, catalog, mappings, rewards); err != nil {
			return err
		}
		log.Printf("no postgres configured, running in-memory demo mode")
	}

	handler := transport.NewHandler(sessions, mappings, leaderboard, rewards, catalog)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting gamification engine on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// seedDemoData loads a small linked catalog so the demo runs end-to-end.
func seedDemoData(ctx context.Context, catalog *app.CatalogService, mappings *app.MappingService, rewards *app.RewardService) error {
	if err := catalog.SyncExternalGame(ctx, domain.ExternalGame{ID: "ext-game-1", Name: "Book Quiz", Active: true}); err != nil {
		return err
	}
	if err := catalog.SyncExternalUser(ctx, domain.ExternalUser{ID: "ext-user-1", Username: "reader", Email: "reader@example.com"}); err != nil {
		return err
	}
	game, err := catalog.CreateInternalGame(ctx, domain.InternalGame{
		ID:            "game-books",
		Name:          "Guess the Book",
		Type:          domain.GameTypeBooks,
		Difficulty:    1,
		TimeLimitSec:  10,
		QuestionCount: 3,
		BasePoints:    10,
	})
	if err != nil {
		return err
	}
	if err := mappings.LinkGame(ctx, "ext-game-1", game.ID); err != nil {
		return err
	}
	_, err = rewards.CreateReward(ctx, domain.Reward{
		ID:           "reward-gold",
		GameID:       game.ID,
		Name:         "Weekly winner voucher",
		RequiredRank: 1,
		Value:        25,
		Available:    10,
	})
	return err
}

// sampleQuestionBank provides demo questions; with Postgres configured the
// bank lives in the questions table instead.
func sampleQuestionBank() map[domain.GameType][]domain.Question {
	return map[domain.GameType][]domain.Question{
		domain.GameTypeBooks: {
			{
				ID:      "q-books-1",
				Prompt:  "Which novel opens with this line?",
				Snippet: "Call me Ishmael.",
				Options: []domain.Option{
					{ID: "o1", Text: "Moby-Dick", Correct: true},
					{ID: "o2", Text: "Treasure Island"},
					{ID: "o3", Text: "Robinson Crusoe"},
					{ID: "o4", Text: "Heart of Darkness"},
				},
			},
			{
				ID:     "q-books-2",
				Prompt: "Which novel features the character Jay Gatsby?",
				Options: []domain.Option{
					{ID: "o1", Text: "Tender Is the Night"},
					{ID: "o2", Text: "The Great Gatsby", Correct: true},
					{ID: "o3", Text: "This Side of Paradise"},
					{ID: "o4", Text: "The Sun Also Rises"},
				},
			},
			{
				ID:     "q-books-3",
				Prompt: "Which dystopia introduced Newspeak?",
				Options: []domain.Option{
					{ID: "o1", Text: "Brave New World"},
					{ID: "o2", Text: "Fahrenheit 451"},
					{ID: "o3", Text: "Nineteen Eighty-Four", Correct: true},
					{ID: "o4", Text: "We"},
				},
			},
		},
		domain.GameTypeAuthors: {
			{
				ID:     "q-authors-1",
				Prompt: "Who wrote One Hundred Years of Solitude?",
				Options: []domain.Option{
					{ID: "o1", Text: "Jorge Luis Borges"},
					{ID: "o2", Text: "Gabriel García Márquez", Correct: true},
					{ID: "o3", Text: "Mario Vargas Llosa"},
					{ID: "o4", Text: "Julio Cortázar"},
				},
			},
		},
		domain.GameTypeYears: {
			{
				ID:     "q-years-1",
				Prompt: "In which year was Don Quixote (part one) first published?",
				Options: []domain.Option{
					{ID: "o1", Text: "1605", Correct: true},
					{ID: "o2", Text: "1615"},
					{ID: "o3", Text: "1599"},
					{ID: "o4", Text: "1621"},
				},
			},
		},
	}
}
