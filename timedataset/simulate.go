package timedataset

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// GenerateYears returns n consecutive years starting at start
func GenerateYears(start, n int) []int {
	years := make([]int, 0, n)
	for i := 0; i < n; i++ {
		years = append(years, start+i)
	}
	return years
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

// SetConst sets every value in the inclusive start to exclusive end year range
func (s Series) SetConst(years []int, val float64, start, end int) Series {
	for i := range s {
		if years[i] >= start && years[i] < end {
			s[i] = val
		}
	}
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateTrend returns bias plus slope per year since the first year
func GenerateTrend(years []int, bias, slope float64) Series {
	y := make([]float64, 0, len(years))
	for _, yr := range years {
		y = append(y, bias+slope*float64(yr-years[0]))
	}
	return Series(y)
}

// GenerateChange returns a series which is zero before chpt and bias plus slope per year since
// chpt afterwards.
func GenerateChange(years []int, chpt int, bias, slope float64) Series {
	y := make([]float64, len(years))
	for i, yr := range years {
		if yr >= chpt {
			y[i] = bias + slope*float64(yr-chpt)
		}
	}
	return Series(y)
}

func GenerateWaveY(years []int, amp, periodYears, order, offset float64) Series {
	y := make([]float64, 0, len(years))
	for _, yr := range years {
		y = append(y, amp*math.Sin(2.0*math.Pi*order/periodYears*(float64(yr)+offset)))
	}
	return Series(y)
}

// GenerateNoise returns gaussian noise with the given scale from a seeded source so simulated
// datasets are reproducible.
func GenerateNoise(n int, scale float64, seed uint64) Series {
	r := rand.New(rand.NewPCG(seed, seed))
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, r.NormFloat64()*scale)
	}
	return Series(y)
}

// GenerateAR returns an AR process with the given lag coefficients driven by seeded gaussian
// innovations.
func GenerateAR(n int, phi []float64, scale float64, seed uint64) Series {
	noise := GenerateNoise(n, scale, seed)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		val := noise[i]
		for j, p := range phi {
			if i-j-1 >= 0 {
				val += p * y[i-j-1]
			}
		}
		y[i] = val
	}
	return Series(y)
}
