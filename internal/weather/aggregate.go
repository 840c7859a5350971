package weather

import (
	"sort"
	"time"

	"github.com/akulkarni-dev/weather-risk-service/internal/common"
)

// RiskDay is one day of the aggregated risk outlook.
type RiskDay struct {
	Date         string    `json:"date"`
	Condition    Condition `json:"weather_type"`
	FloodRisk    float64   `json:"flood_risk"`
	StormRisk    float64   `json:"storm_risk"`
	WildfireRisk float64   `json:"wildfire_risk"`
}

// RiskOutlook summarizes the stored forecast window for one location.
// Overall risks are the per-kind maxima across the window, the dominant
// condition is chosen by majority.
type RiskOutlook struct {
	Location          string    `json:"location"`
	Country           string    `json:"country"`
	Days              []RiskDay `json:"days"`
	MaxFloodRisk      float64   `json:"max_flood_risk"`
	MaxStormRisk      float64   `json:"max_storm_risk"`
	MaxWildfireRisk   float64   `json:"max_wildfire_risk"`
	DominantCondition Condition `json:"dominant_condition"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// AggregateRiskOutlook folds stored forecast records into a per-day risk
// outlook. Multiple records on the same calendar day are averaged; the
// outlook's headline risks are the maxima over the resulting days.
func AggregateRiskOutlook(loc Location, records []Record) RiskOutlook {
	out := RiskOutlook{
		Location:          loc.Name,
		Country:           loc.Country,
		Days:              []RiskDay{},
		DominantCondition: ConditionCloudy,
		GeneratedAt:       time.Now().UTC(),
	}
	if len(records) == 0 {
		return out
	}

	type bucket struct {
		flood, storm, wildfire float64
		count                  int
		conditions             map[Condition]int
	}
	byDay := make(map[string]*bucket)
	for _, rec := range records {
		day := rec.Timestamp.UTC().Format("2006-01-02")
		b, ok := byDay[day]
		if !ok {
			b = &bucket{conditions: make(map[Condition]int)}
			byDay[day] = b
		}
		b.flood += rec.FloodRisk
		b.storm += rec.StormRisk
		b.wildfire += rec.WildfireRisk
		b.count++
		b.conditions[rec.Condition]++
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	overall := make(map[Condition]int)
	for _, day := range days {
		b := byDay[day]
		n := float64(b.count)
		rd := RiskDay{
			Date:         day,
			Condition:    majorityCondition(b.conditions),
			FloodRisk:    common.Round(b.flood/n, 1),
			StormRisk:    common.Round(b.storm/n, 1),
			WildfireRisk: common.Round(b.wildfire/n, 1),
		}
		if rd.FloodRisk > out.MaxFloodRisk {
			out.MaxFloodRisk = rd.FloodRisk
		}
		if rd.StormRisk > out.MaxStormRisk {
			out.MaxStormRisk = rd.StormRisk
		}
		if rd.WildfireRisk > out.MaxWildfireRisk {
			out.MaxWildfireRisk = rd.WildfireRisk
		}
		for cond, count := range b.conditions {
			overall[cond] += count
		}
		out.Days = append(out.Days, rd)
	}

	out.DominantCondition = majorityCondition(overall)
	return out
}

func majorityCondition(counts map[Condition]int) Condition {
	best := ConditionCloudy
	bestCount := 0
	for cond, count := range counts {
		if count > bestCount || (count == bestCount && cond < best) {
			bestCount = count
			best = cond
		}
	}
	return best
}
