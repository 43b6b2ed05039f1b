// models/game_record.go
package models

import "time"

// Winner is derived from the final scores, never supplied by a caller.
type Winner string

const (
	WinnerPlayer Winner = "player"
	WinnerCPU    Winner = "cpu"
)

// GameRecord is one finished game (human player vs CPU).
type GameRecord struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	PlayerName  string    `json:"player_name" gorm:"size:100;not null;default:'Player 1'"`
	PlayerScore int       `json:"player_score" gorm:"not null;index"`
	CPUScore    int       `json:"cpu_score" gorm:"column:cpu_score;not null"`
	Winner      Winner    `json:"winner" gorm:"type:varchar(8);not null;check:winner IN ('player','cpu')"`
	TargetScore int       `json:"target_score" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP"`
}

func (GameRecord) TableName() string {
	return "games"
}

// CreateGameInput carries a submitted result. It has no Winner field; the
// winner is always computed with DecideWinner.
type CreateGameInput struct {
	PlayerName  *string
	PlayerScore int
	CPUScore    int
	TargetScore int
}

// DecideWinner returns WinnerPlayer only on a strictly higher player score.
// Ties go to the CPU.
func DecideWinner(playerScore, cpuScore int) Winner {
	if playerScore > cpuScore {
		return WinnerPlayer
	}
	return WinnerCPU
}
