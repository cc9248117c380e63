// Command seed populates the forum database with demo users, topics, replies and votes.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/bootstrap"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/config"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/middleware"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numTopics := flag.Int("topics", 200, "Number of topics to create")
	replies := flag.Int("replies", 5, "Replies per topic")
	votes := flag.Int("votes", 20, "Votes cast per user")
	acceptRatio := flag.Float64("accept", 0.4, "Share of questions that get an accepted answer")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ApplySchema: true})
	if err != nil {
		middleware.Logger.Error("failed to initialize runtime", slog.String("error", err.Error()))
		os.Exit(1)
	}

	s := seed.NewSeeder(rt.DB, seed.Options{
		NumUsers:        *numUsers,
		NumTopics:       *numTopics,
		RepliesPerTopic: *replies,
		VotesPerUser:    *votes,
		AcceptRatio:     float32(*acceptRatio),
	})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			middleware.Logger.Error("cleanup failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	sum, err := s.Run(ctx)
	if err != nil {
		middleware.Logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	middleware.Logger.Info("seeding complete",
		slog.Int("users", sum.Users),
		slog.Int("topics", sum.Topics),
		slog.Int("replies", sum.Replies),
		slog.Int("votes", sum.Votes),
		slog.Int("accepted", sum.Accepted))
}
