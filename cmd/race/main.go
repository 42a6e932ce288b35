package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gridrace/api/internal/engine"
	"github.com/gridrace/api/internal/model"
	"github.com/gridrace/api/internal/repository/postgres"
	"github.com/gridrace/api/internal/track"
)

// Headless runner: drives a single race synchronously and prints each
// committed move. Useful for tuning weights and pruning settings.
func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var (
		trackName string
		depth     int
		maxTurns  int
		dbURL     string
		dryRun    bool
		verbose   bool
	)

	flag.StringVar(&trackName, "track", "oval", "Track name (see -list)")
	flag.IntVar(&depth, "depth", 5, "Search depth")
	flag.IntVar(&maxTurns, "max-turns", 200, "Turn limit before giving up")
	flag.StringVar(&dbURL, "db", "", "Database URL for archiving (or use DATABASE_URL env)")
	flag.BoolVar(&dryRun, "dry-run", false, "Skip database writes")
	flag.BoolVar(&verbose, "v", false, "Debug logging")

	list := flag.Bool("list", false, "List built-in tracks and exit")
	flag.Parse()

	if *list {
		for _, name := range track.Names() {
			fmt.Println(name)
		}
		return
	}

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	trk, err := track.ByName(trackName)
	if err != nil {
		log.Fatal().Err(err).Msg("Unknown track")
	}

	cfg := engine.DefaultConfig()
	cfg.Depth = depth
	cfg.PostThinkingDelay = 0

	session, err := engine.NewSession(cfg, track.NewEvaluator(trk))
	if err != nil {
		log.Fatal().Err(err).Msg("Bad search config")
	}

	var repo *postgres.RaceRepo
	var race *model.Race
	if !dryRun {
		if dbURL == "" {
			dbURL = os.Getenv("DATABASE_URL")
		}
		if dbURL != "" {
			db, err := postgres.Connect(dbURL)
			if err != nil {
				log.Fatal().Err(err).Msg("Database connection failed")
			}
			defer db.Close()
			repo = postgres.NewRaceRepo(db)
			race, err = repo.Create(context.Background(), trackName)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to create race record")
			}
			log.Info().Str("raceId", race.ID).Msg("Archiving to database")
		}
	}

	position := trk.Start()
	target := trk.Target()
	velocity := engine.Vec{}
	outcome := model.OutcomeMaxTurns

	turn := 0
	for turn < maxTurns {
		session.Begin(position, velocity)
		for session.Step() {
		}
		dec, ok := session.Decide()
		if !ok {
			log.Fatal().Str("state", session.State().String()).Msg("Decision unavailable")
		}
		position = dec.Position
		velocity = dec.Velocity
		turn++

		fmt.Printf("turn %3d  pos=(%d,%d) vel=(%d,%d) quality=%s avg=%.3f fallback=%v expansions=%d\n",
			turn, position.X, position.Y, velocity.X, velocity.Y,
			dec.Path.Quality, dec.Path.AverageScore, dec.Fallback, session.Expansions())

		if repo != nil {
			saveTurn(repo, race.ID, turn, dec, session.Expansions())
		}

		session.ConfirmExecuted()

		// On or next to the target counts: a fast car can step over the
		// exact cell.
		if chebyshev(position, target) <= 1 {
			outcome = model.OutcomeFinished
			break
		}
	}

	if repo != nil {
		if err := repo.Finish(context.Background(), race.ID, outcome, turn); err != nil {
			log.Error().Err(err).Msg("Failed to finish race record")
		}
	}

	fmt.Printf("outcome=%s turns=%d\n", outcome, turn)
	if outcome != model.OutcomeFinished {
		os.Exit(1)
	}
}

func chebyshev(a, b engine.Vec) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

func saveTurn(repo *postgres.RaceRepo, raceID string, turn int, dec engine.Decision, expansions int) {
	record := &model.RaceTurn{
		RaceID:     raceID,
		Turn:       turn,
		PositionX:  dec.Position.X,
		PositionY:  dec.Position.Y,
		VelocityX:  dec.Velocity.X,
		VelocityY:  dec.Velocity.Y,
		Score:      dec.Path.AverageScore,
		Quality:    dec.Path.Quality.String(),
		Fallback:   dec.Fallback,
		Expansions: expansions,
	}
	if err := repo.SaveTurn(context.Background(), record); err != nil {
		log.Error().Err(err).Int("turn", turn).Msg("Failed to save turn")
	}
}
