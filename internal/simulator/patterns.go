package simulator

import (
	"math"
	"math/rand"
	"time"
)

type Pattern interface {
	Apply(base float64) float64
	Name() string
}

var (
	PatternSteady    Pattern = &SteadyPattern{}
	PatternDaily     Pattern = &DailyPattern{}
	PatternWeekly    Pattern = &WeeklyPattern{}
	PatternRandom    Pattern = &RandomPattern{}
	PatternNightDrop Pattern = &NightDropPattern{}
)

func ParsePattern(name string) Pattern {
	switch name {
	case "daily":
		return PatternDaily
	case "weekly":
		return PatternWeekly
	case "random":
		return PatternRandom
	case "night_drop":
		return PatternNightDrop
	case "gradual_rise":
		return &GradualRisePattern{startTime: time.Now()}
	default:
		return PatternSteady
	}
}

// SteadyPattern - constant load
type SteadyPattern struct{}

func (p *SteadyPattern) Apply(base float64) float64 {
	return base
}

func (p *SteadyPattern) Name() string {
	return "steady"
}

// DailyPattern - hospital activity cycle. Admissions peak late morning,
// a second bump follows evening clinic closures, overnight is quiet.
type DailyPattern struct{}

func (p *DailyPattern) Apply(base float64) float64 {
	hour := time.Now().Hour()

	var modifier float64
	switch {
	case hour >= 10 && hour <= 13:
		modifier = 1.35
	case hour >= 18 && hour <= 21:
		modifier = 1.2
	case hour >= 7 && hour <= 9:
		modifier = 1.1
	case hour >= 0 && hour <= 5:
		modifier = 0.65
	default:
		modifier = 1.0
	}

	result := base * modifier
	if result > 100 {
		result = 100
	}
	return result
}

func (p *DailyPattern) Name() string {
	return "daily"
}

// WeeklyPattern - Mondays run hot, weekends drop elective load but keep
// emergency traffic.
type WeeklyPattern struct{}

func (p *WeeklyPattern) Apply(base float64) float64 {
	now := time.Now()
	weekday := now.Weekday()
	hour := now.Hour()

	var modifier float64 = 1.0

	switch weekday {
	case time.Monday:
		modifier = 1.25
	case time.Saturday, time.Sunday:
		modifier = 0.8
	default:
		switch {
		case hour >= 10 && hour <= 13:
			modifier = 1.3
		case hour >= 0 && hour <= 5:
			modifier = 0.7
		}
	}

	result := base * modifier
	if result > 100 {
		result = 100
	}
	return result
}

func (p *WeeklyPattern) Name() string {
	return "weekly"
}

// RandomPattern - unpredictable swings
type RandomPattern struct{}

func (p *RandomPattern) Apply(base float64) float64 {
	modifier := 0.6 + rand.Float64()*0.8
	result := base * modifier
	if result > 100 {
		result = 100
	}
	if result < 5 {
		result = 5
	}
	return result
}

func (p *RandomPattern) Name() string {
	return "random"
}

// NightDropPattern - sharp overnight reduction, used for oxygen draw
// which tracks ventilated patient activity.
type NightDropPattern struct{}

func (p *NightDropPattern) Apply(base float64) float64 {
	hour := time.Now().Hour()

	modifier := 1.0
	if hour >= 23 || hour <= 5 {
		modifier = 0.55
	}

	result := base * modifier
	if result > 100 {
		result = 100
	}
	return result
}

func (p *NightDropPattern) Name() string {
	return "night_drop"
}

// GradualRisePattern - slowly increasing load, useful for rehearsing
// predictive alerts before thresholds are crossed.
type GradualRisePattern struct {
	startTime time.Time
}

func (p *GradualRisePattern) Apply(base float64) float64 {
	elapsed := time.Since(p.startTime)
	minutes := elapsed.Minutes()

	// Increase by 2% per minute, capped at 50% increase
	increasePercent := math.Min(minutes*2, 50)
	modifier := 1.0 + (increasePercent / 100)

	result := base * modifier
	if result > 100 {
		result = 100
	}
	return result
}

func (p *GradualRisePattern) Name() string {
	return "gradual_rise"
}

// SineWavePattern - smooth oscillation
type SineWavePattern struct {
	Period    time.Duration
	Amplitude float64
}

func (p *SineWavePattern) Apply(base float64) float64 {
	if p.Period == 0 {
		p.Period = 10 * time.Minute
	}
	if p.Amplitude == 0 {
		p.Amplitude = 15
	}

	elapsed := float64(time.Now().UnixNano())
	periodNano := float64(p.Period.Nanoseconds())
	phase := (elapsed / periodNano) * 2 * math.Pi

	modifier := math.Sin(phase) * p.Amplitude
	result := base + modifier

	if result > 100 {
		result = 100
	}
	if result < 5 {
		result = 5
	}
	return result
}

func (p *SineWavePattern) Name() string {
	return "sine_wave"
}
