package game

import "time"

// Settings are the per-process game parameters. The four phase/backup
// durations map to the WORD_SELECTION_TIME, DRAWING_TIME,
// RESULT_DISPLAY_TIME and BACKUP_INTERVAL environment variables.
type Settings struct {
	WordSelectionTime time.Duration
	DrawingTime       time.Duration
	ResultDisplayTime time.Duration
	BackupInterval    time.Duration

	GraceWindow time.Duration
	MaxRounds   int
	MinPlayers  int
	MaxPlayers  int
	Difficulty  string
}

func DefaultSettings() Settings {
	return Settings{
		WordSelectionTime: 10 * time.Second,
		DrawingTime:       80 * time.Second,
		ResultDisplayTime: 5 * time.Second,
		BackupInterval:    300 * time.Second,
		GraceWindow:       15 * time.Second,
		MaxRounds:         6,
		MinPlayers:        2,
		MaxPlayers:        8,
		Difficulty:        "medium",
	}
}
