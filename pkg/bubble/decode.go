package bubble

import (
	"log/slog"
	"sort"
)

// thresholdParams holds the baseline/k pair spec.md §4.5 assigns to a
// query kind and source.
type thresholdParams struct {
	baseline, k float64
}

var (
	cameraID      = thresholdParams{0.08, 0.35}
	scanID        = thresholdParams{0.18, 0.35}
	cameraAnswers = thresholdParams{0.06, 0.30}
	scanAnswers   = thresholdParams{0.15, 0.30}
)

// AdaptiveThreshold computes spec.md §4.5's per-query threshold from
// the full distribution of sampled scores for one query (a column's
// ten digit rows, or a question's choices): threshold = max(baseline,
// median + (q90-median)*k). Filled bubbles are distributional
// outliers, so this tracks lighting variation better than a fixed cut.
func AdaptiveThreshold(scores []float64, p thresholdParams) float64 {
	if len(scores) == 0 {
		return p.baseline
	}
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	median := percentile(sorted, 0.50)
	q90 := percentile(sorted, 0.90)
	t := median + (q90-median)*p.k
	if t < p.baseline {
		return p.baseline
	}
	return t
}

// percentile interpolates linearly over an already-sorted slice.
func percentile(sorted []float64, frac float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := frac * float64(n-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac2 := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac2
}

// IDColumnResult is the outcome of decoding one student-id column.
type IDColumnResult struct {
	Digit        byte // '0'-'9'; '0' sentinel when undetected, spec.md §12.1
	Detected     bool
	DoubleShaded bool
}

// DecodeIDColumn picks the row with the highest score above threshold
// (spec.md §4.5 ID decoding). scores must be indexed 0-9 by digit.
func DecodeIDColumn(scores [10]float64, isCamera bool) IDColumnResult {
	params := scanID
	if isCamera {
		params = cameraID
	}
	threshold := AdaptiveThreshold(scores[:], params)

	winner, winnerScore := -1, -1.0
	runnerUp := -1.0
	for d, s := range scores {
		if s < threshold {
			continue
		}
		if s > winnerScore {
			runnerUp = winnerScore
			winnerScore = s
			winner = d
		} else if s > runnerUp {
			runnerUp = s
		}
	}
	if winner < 0 {
		slog.Debug("bubble: id column undetected", "threshold", threshold)
		return IDColumnResult{Digit: '0', Detected: false}
	}
	result := IDColumnResult{Digit: byte('0' + winner), Detected: true}
	if runnerUp >= 0 && runnerUp >= 0.5*winnerScore {
		result.DoubleShaded = true
		slog.Debug("bubble: id column double-shaded", "digit", winner, "winnerScore", winnerScore, "runnerUp", runnerUp)
	}
	return result
}

// AnswerResult is the outcome of decoding one question.
type AnswerResult struct {
	ChoiceIndex int // -1 when blank
	Multiple    bool
}

// DecodeAnswer picks the darkest choice above threshold with noise
// rejection (spec.md §4.5 answer decoding). scores is indexed by
// choice (0 = "A", 1 = "B", ...).
func DecodeAnswer(scores []float64, isCamera bool) AnswerResult {
	params := scanAnswers
	if isCamera {
		params = cameraAnswers
	}
	threshold := AdaptiveThreshold(scores, params)

	winner, winnerScore := -1, -1.0
	runnerUp := -1.0
	otherSum := 0.0
	for c, s := range scores {
		if s > winnerScore {
			runnerUp = winnerScore
			winnerScore = s
			winner = c
		} else if s > runnerUp {
			runnerUp = s
		}
	}
	if winner < 0 || winnerScore < threshold {
		slog.Debug("bubble: answer blank", "threshold", threshold, "winnerScore", winnerScore)
		return AnswerResult{ChoiceIndex: -1}
	}

	n := len(scores)
	if n > 1 {
		otherSum = sumExcept(scores, winner)
		avgOthers := otherSum / float64(n-1)
		minRatio := 1.5
		if isCamera {
			minRatio = 1.8
		}
		if winnerScore < minRatio*avgOthers && winnerScore < 1.5*threshold {
			slog.Debug("bubble: answer rejected as noise", "winner", winner, "winnerScore", winnerScore, "avgOthers", avgOthers)
			return AnswerResult{ChoiceIndex: -1}
		}
	}

	result := AnswerResult{ChoiceIndex: winner}
	if runnerUp >= threshold && runnerUp >= 0.4*winnerScore {
		result.Multiple = true
		slog.Debug("bubble: multiple answers shaded", "winner", winner, "winnerScore", winnerScore, "runnerUp", runnerUp)
	}
	return result
}

func sumExcept(scores []float64, skip int) float64 {
	var sum float64
	for i, s := range scores {
		if i == skip {
			continue
		}
		sum += s
	}
	return sum
}
