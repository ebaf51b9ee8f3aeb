package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"guesstheword/internal/game"
	"guesstheword/internal/types"
)

type contextKey string

// App holds configuration and the per-cookie session registry.
type App struct {
	IsProduction   bool
	SessionTimeout time.Duration
	CookieMaxAge   time.Duration
	StaticCacheAge time.Duration
	ScoreRetention time.Duration
	SweepInterval  time.Duration
	RateLimitRPS   int
	RateLimitBurst int
	ScoreDir       string
	CORSOrigins    []string

	Vocabulary []string
	Scheduler  game.Scheduler

	Sessions     map[string]*sessionEntry
	FinalScores  map[string]types.ScoreRecord
	SessionMutex sync.RWMutex // protects Sessions, FinalScores and entry access times

	LimiterMap   map[string]*rate.Limiter
	LimiterMutex sync.Mutex

	StartTime time.Time
}

// sessionEntry pairs a running game with its bookkeeping.
type sessionEntry struct {
	game       *game.Session
	lastAccess time.Time
}
