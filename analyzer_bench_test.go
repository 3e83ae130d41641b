package warming

import (
	"testing"

	"github.com/aouyang1/go-warming/scenario"
	"github.com/pkg/profile"
)

var (
	benchForecastRes *Results
	benchScenarioRes *scenario.Result
)

func benchAnalyzer(b *testing.B) *Analyzer {
	f, err := SimulateObservations(1850, 175, 7)
	if err != nil {
		b.Fatal(err)
	}
	a, err := NewAnalyzer(f, nil)
	if err != nil {
		b.Fatal(err)
	}
	return a
}

func BenchmarkScenario(b *testing.B) {
	a := benchAnalyzer(b)
	off := scenario.Offsets{CO2: 5, CH4: -10, N2O: 1.5}

	var err error
	b.ResetTimer()
	for b.Loop() {
		benchScenarioRes, err = a.Scenario(off)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkForecastARIMA(b *testing.B) {
	a := benchAnalyzer(b)

	var err error
	b.ResetTimer()
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(b.TempDir()), profile.Quiet).Stop()
	for b.Loop() {
		benchForecastRes, err = a.Forecast(ModelARIMA, DefaultHorizon)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkForecastAdditive(b *testing.B) {
	a := benchAnalyzer(b)

	var err error
	b.ResetTimer()
	for b.Loop() {
		benchForecastRes, err = a.Forecast(ModelAdditive, DefaultHorizon)
		if err != nil {
			b.Fatal(err)
		}
	}
}
