package analytics

import "errors"

// ErrInsufficientMinutes marks analyses that need playing time to say
// anything meaningful.
var ErrInsufficientMinutes = errors.New("insufficient playing time for analysis")

// Weights and caps for the composite defensive score. Each component is a
// per-36 rate, individually capped, then the sum is scaled by a minutes
// factor and clamped to [0, 100].
const (
	stealsWeight = 8.0
	stealsCap    = 25.0
	blocksWeight = 6.0
	blocksCap    = 20.0
	drebWeight   = 2.0
	drebCap      = 25.0
	foulBase     = 15.0
	foulWeight   = 2.0

	minutesFactorCap   = 1.2
	minutesFactorPivot = 32.0
)

// DefensiveImpactScore computes the bounded composite defensive score.
// Undefined when minutes <= 0.
func DefensiveImpactScore(s GameStats) (float64, bool) {
	if s.MinutesPlayed <= 0 {
		return 0, false
	}

	stealsPer36 := float64(s.Steals) / s.MinutesPlayed * 36.0
	stealsScore := min(stealsPer36*stealsWeight, stealsCap)

	blocksPer36 := float64(s.Blocks) / s.MinutesPlayed * 36.0
	blocksScore := min(blocksPer36*blocksWeight, blocksCap)

	drebPer36 := float64(s.ReboundsDefensive) / s.MinutesPlayed * 36.0
	drebScore := min(drebPer36*drebWeight, drebCap)

	// Zero fouls earns the full foul-efficiency component.
	foulScore := foulBase
	if s.FoulsPersonal > 0 {
		foulsPer36 := float64(s.FoulsPersonal) / s.MinutesPlayed * 36.0
		foulScore = max(foulBase-foulsPer36*foulWeight, 0)
	}

	// Heavier minutes earn up to a 20% bonus.
	minutesFactor := min(s.MinutesPlayed/minutesFactorPivot, minutesFactorCap)

	score := (stealsScore + blocksScore + drebScore + foulScore) * minutesFactor
	return min(score, 100.0), true
}

// GradeDefense maps a defensive impact score onto twelve letter bands.
// These bands are distinct from the efficiency grading bands.
func GradeDefense(score float64) string {
	switch {
	case score >= 85:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 75:
		return "A-"
	case score >= 70:
		return "B+"
	case score >= 65:
		return "B"
	case score >= 60:
		return "B-"
	case score >= 55:
		return "C+"
	case score >= 50:
		return "C"
	case score >= 45:
		return "C-"
	case score >= 40:
		return "D+"
	case score >= 35:
		return "D"
	default:
		return "D-"
	}
}

// DefensiveProfile bundles the defensive score, grade, per-36 rates and the
// qualitative observations derived from them.
type DefensiveProfile struct {
	ImpactScore   float64  `json:"defensive_impact_score"`
	Grade         string   `json:"grade"`
	StealsPer36   float64  `json:"steal_rate_per_36"`
	BlocksPer36   float64  `json:"block_rate_per_36"`
	DrebPer36     float64  `json:"defensive_rebound_rate_per_36"`
	FoulsPer36    float64  `json:"foul_rate_per_36"`
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	MinutesPlayed float64  `json:"minutes_played"`
}

// AnalyzeDefense classifies the per-36 defensive rates against fixed
// cutoffs and returns the full profile. Players without minutes get
// ErrInsufficientMinutes rather than partial output.
func AnalyzeDefense(s GameStats) (DefensiveProfile, error) {
	if s.MinutesPlayed <= 0 {
		return DefensiveProfile{}, ErrInsufficientMinutes
	}

	stealRate, _ := Per36(s.Steals, s.MinutesPlayed)
	blockRate, _ := Per36(s.Blocks, s.MinutesPlayed)
	drebRate, _ := Per36(s.ReboundsDefensive, s.MinutesPlayed)
	foulRate, _ := Per36(s.FoulsPersonal, s.MinutesPlayed)
	score, _ := DefensiveImpactScore(s)

	p := DefensiveProfile{
		ImpactScore:   score,
		Grade:         GradeDefense(score),
		StealsPer36:   stealRate,
		BlocksPer36:   blockRate,
		DrebPer36:     drebRate,
		FoulsPer36:    foulRate,
		MinutesPlayed: s.MinutesPlayed,
	}

	switch {
	case stealRate >= 2.0:
		p.Strengths = append(p.Strengths, "Excellent steal rate")
	case stealRate == 0:
		p.Weaknesses = append(p.Weaknesses, "No steals")
	case stealRate < 0.8:
		p.Weaknesses = append(p.Weaknesses, "Low steal production")
	}

	switch {
	case blockRate >= 1.5:
		p.Strengths = append(p.Strengths, "Strong shot blocking")
	case blockRate == 0:
		p.Weaknesses = append(p.Weaknesses, "No blocks")
	case blockRate < 0.3:
		p.Weaknesses = append(p.Weaknesses, "Limited shot blocking")
	}

	switch {
	case drebRate >= 8.0:
		p.Strengths = append(p.Strengths, "Excellent defensive rebounding")
	case drebRate == 0:
		p.Weaknesses = append(p.Weaknesses, "No defensive rebounds")
	case drebRate < 4.0:
		p.Weaknesses = append(p.Weaknesses, "Below average defensive rebounding")
	}

	switch {
	case foulRate == 0:
		p.Weaknesses = append(p.Weaknesses, "No fouls")
	case foulRate <= 3.0:
		p.Strengths = append(p.Strengths, "Disciplined defense (low fouls)")
	case foulRate >= 6.0:
		p.Weaknesses = append(p.Weaknesses, "Foul prone")
	}

	return p, nil
}
