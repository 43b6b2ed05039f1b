// services/game_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"pong-leaderboard/models"

	"gorm.io/gorm"
)

const (
	DefaultPlayerName   = "Player 1"
	MaxPlayerNameLength = 100
	LeaderboardLimit    = 20
)

type GameService struct {
	DB *gorm.DB
	// Cache is optional; nil means every read goes to the database.
	Cache LeaderboardCache
}

func NewGameService(db *gorm.DB, cache LeaderboardCache) *GameService {
	return &GameService{DB: db, Cache: cache}
}

// NormalizePlayerName trims the name, falls back to DefaultPlayerName when
// nothing is left and cuts it to MaxPlayerNameLength characters.
func NormalizePlayerName(name *string) string {
	if name == nil {
		return DefaultPlayerName
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return DefaultPlayerName
	}
	if runes := []rune(trimmed); len(runes) > MaxPlayerNameLength {
		trimmed = string(runes[:MaxPlayerNameLength])
	}
	return trimmed
}

// CreateGame stores one finished game and returns it as persisted.
func (s *GameService) CreateGame(ctx context.Context, in models.CreateGameInput) (*models.GameRecord, error) {
	game := &models.GameRecord{
		PlayerName:  NormalizePlayerName(in.PlayerName),
		PlayerScore: in.PlayerScore,
		CPUScore:    in.CPUScore,
		Winner:      models.DecideWinner(in.PlayerScore, in.CPUScore),
		TargetScore: in.TargetScore,
	}

	db := s.DB.WithContext(ctx)
	if err := db.Create(game).Error; err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	if err := db.First(game, game.ID).Error; err != nil {
		return nil, fmt.Errorf("create game: reload %d: %w", game.ID, err)
	}

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx); err != nil {
			log.Printf("[Cache] Failed to invalidate leaderboard after game %d: %v", game.ID, err)
		}
	}

	return game, nil
}

// GetLeaderboard returns up to LeaderboardLimit games, highest player score
// first. Equal scores keep insertion order.
func (s *GameService) GetLeaderboard(ctx context.Context) ([]models.GameRecord, error) {
	// The generation is read before the query so a result that predates a
	// concurrent CreateGame is stored under a generation it has already retired.
	cache := s.Cache
	var gen int64
	if cache != nil {
		var err error
		if gen, err = cache.Generation(ctx); err != nil {
			log.Printf("[Cache] Generation read failed, using database: %v", err)
			cache = nil
		}
	}

	if cache != nil {
		games, ok, err := cache.Get(ctx, gen)
		if err != nil {
			log.Printf("[Cache] Leaderboard read failed, using database: %v", err)
		} else if ok {
			return games, nil
		}
	}

	games := make([]models.GameRecord, 0, LeaderboardLimit)
	err := s.DB.WithContext(ctx).
		Order("player_score DESC").
		Order("id ASC").
		Limit(LeaderboardLimit).
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}

	if cache != nil {
		if err := cache.Set(ctx, gen, games); err != nil {
			log.Printf("[Cache] Failed to store leaderboard: %v", err)
		}
	}

	return games, nil
}
