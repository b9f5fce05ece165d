package split

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/splitfare/splitfare/pkg/journey"
)

const defaultBatchSize = 1
const defaultBatchDelay = 100 * time.Millisecond

// savingsThreshold gates a result as a fraction of the original price. The
// evaluator already requires strictly cheaper, this is enforced again here as
// the authoritative gate.
const savingsThreshold = 1.0

// Progress is one step of a streaming analysis
type Progress struct {
	Checked        int    `json:"checked"`
	Total          int    `json:"total"`
	Message        string `json:"message"`
	CurrentStation string `json:"currentStation,omitempty"`
}

// Analyzer drives split evaluation across all candidates of a journey
type Analyzer struct {
	Evaluator *Evaluator

	// BatchSize controls how many candidates are evaluated concurrently in
	// batch mode. Kept at 1 to stay under the provider's rate limit.
	BatchSize  int
	BatchDelay time.Duration
}

func NewAnalyzer(gateway Gateway) *Analyzer {
	return &Analyzer{
		Evaluator:  &Evaluator{Gateway: gateway},
		BatchSize:  defaultBatchSize,
		BatchDelay: defaultBatchDelay,
	}
}

// Analyze evaluates every candidate and returns the split options that beat
// the original price. Results are unsorted, the caller applies ranking.
//
// A non nil onProgress selects streaming mode: candidates are visited
// strictly sequentially with a progress event before and after each one, and
// a single failing candidate is logged and skipped rather than aborting the
// run. Without onProgress, candidates are processed in batches of BatchSize
// with failures isolated per candidate.
func (a *Analyzer) Analyze(ctx context.Context, original *journey.Journey, candidates []Candidate, options journey.SearchOptions, originalPrice float64, onProgress func(Progress)) ([]*Option, error) {
	log.Debug().
		Int("candidates", len(candidates)).
		Bool("streaming", onProgress != nil).
		Msg("Starting split analysis")

	if onProgress != nil {
		return a.analyzeStreaming(ctx, original, candidates, options, originalPrice, onProgress)
	}

	return a.analyzeBatched(ctx, original, candidates, options, originalPrice)
}

type candidateOutcome struct {
	candidate Candidate
	option    *Option
	err       error
}

func (a *Analyzer) analyzeBatched(ctx context.Context, original *journey.Journey, candidates []Candidate, options journey.SearchOptions, originalPrice float64) ([]*Option, error) {
	var splitOptions []*Option

	batchSize := a.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	for start := 0; start < len(candidates); start += batchSize {
		end := start + batchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		batchPool := pool.NewWithResults[candidateOutcome]()
		for _, candidate := range candidates[start:end] {
			batchPool.Go(func() candidateOutcome {
				option, err := a.Evaluator.Evaluate(ctx, original, candidate, options, originalPrice)

				return candidateOutcome{
					candidate: candidate,
					option:    option,
					err:       err,
				}
			})
		}

		for _, outcome := range batchPool.Wait() {
			if outcome.err != nil {
				log.Debug().
					Err(outcome.err).
					Str("station", outcome.candidate.Station.Name).
					Msg("Split evaluation failed")

				continue
			}

			if outcome.option != nil && outcome.option.TotalPrice < originalPrice*savingsThreshold {
				splitOptions = append(splitOptions, outcome.option)

				log.Debug().
					Str("station", outcome.candidate.Station.Name).
					Float64("totalPrice", outcome.option.TotalPrice).
					Float64("savings", outcome.option.Savings).
					Msg("Found split option")
			}
		}

		if end < len(candidates) {
			if err := sleepContext(ctx, a.BatchDelay); err != nil {
				return splitOptions, err
			}
		}
	}

	return splitOptions, nil
}

func (a *Analyzer) analyzeStreaming(ctx context.Context, original *journey.Journey, candidates []Candidate, options journey.SearchOptions, originalPrice float64, onProgress func(Progress)) ([]*Option, error) {
	var splitOptions []*Option

	for index, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return splitOptions, err
		}

		onProgress(Progress{
			Checked:        index,
			Total:          len(candidates),
			Message:        fmt.Sprintf("Prüfe %s...", candidate.Station.Name),
			CurrentStation: candidate.Station.Name,
		})

		option, err := a.Evaluator.Evaluate(ctx, original, candidate, options, originalPrice)
		if err != nil {
			log.Debug().
				Err(err).
				Str("station", candidate.Station.Name).
				Msg("Split evaluation failed")
		} else if option != nil && option.TotalPrice < originalPrice*savingsThreshold {
			splitOptions = append(splitOptions, option)
		}

		message := fmt.Sprintf("%d/%d Stationen geprüft", index+1, len(candidates))
		if index+1 == len(candidates) {
			message = "Analyse abgeschlossen"
		}

		onProgress(Progress{
			Checked:        index + 1,
			Total:          len(candidates),
			Message:        message,
			CurrentStation: candidate.Station.Name,
		})

		if index < len(candidates)-1 {
			if err := sleepContext(ctx, a.BatchDelay); err != nil {
				return splitOptions, err
			}
		}
	}

	return splitOptions, nil
}

func sleepContext(ctx context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
