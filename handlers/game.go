// handlers/game.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"pong-leaderboard/models"
	"pong-leaderboard/services"

	"github.com/gofiber/fiber/v2"
)

// WholeNumber decodes a JSON integer, an integral float such as 11.0, or a
// string holding an integer such as "11". Anything else is rejected.
type WholeNumber int

func (n *WholeNumber) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%q is not a valid integer", s)
		}
		*n = WholeNumber(v)
		return nil
	}

	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*n = WholeNumber(v)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return fmt.Errorf("%s is not a valid integer", raw)
	}
	*n = WholeNumber(f)
	return nil
}

// CreateGameRequest is the POST /api/games body. Pointers tell a missing
// field apart from zero. A "winner" key in the body is never read.
type CreateGameRequest struct {
	PlayerName  *string      `json:"player_name"`
	PlayerScore *WholeNumber `json:"player_score"`
	CPUScore    *WholeNumber `json:"cpu_score"`
	TargetScore *WholeNumber `json:"target_score"`
}

// Input checks required fields and converts to the service input.
func (r CreateGameRequest) Input() (models.CreateGameInput, error) {
	var missing []string
	if r.PlayerScore == nil {
		missing = append(missing, "player_score")
	}
	if r.CPUScore == nil {
		missing = append(missing, "cpu_score")
	}
	if r.TargetScore == nil {
		missing = append(missing, "target_score")
	}
	if len(missing) > 0 {
		return models.CreateGameInput{}, fiber.NewError(fiber.StatusUnprocessableEntity,
			"missing required field(s): "+strings.Join(missing, ", "))
	}

	return models.CreateGameInput{
		PlayerName:  r.PlayerName,
		PlayerScore: int(*r.PlayerScore),
		CPUScore:    int(*r.CPUScore),
		TargetScore: int(*r.TargetScore),
	}, nil
}

func SetupGameRoutes(app *fiber.App, gameService *services.GameService) {
	app.Post("/api/games", func(c *fiber.Ctx) error {
		var req CreateGameRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "invalid request body: " + err.Error(),
			})
		}

		input, err := req.Input()
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		}

		game, err := gameService.CreateGame(c.UserContext(), input)
		if err != nil {
			log.Printf("❌ [GAMES] Create failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create game: " + err.Error(),
			})
		}

		return c.Status(fiber.StatusCreated).JSON(game)
	})

	app.Get("/api/games/leaderboard", func(c *fiber.Ctx) error {
		games, err := gameService.GetLeaderboard(c.UserContext())
		if err != nil {
			log.Printf("❌ [GAMES] Leaderboard fetch failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch leaderboard: " + err.Error(),
			})
		}
		return c.JSON(games)
	})
}
