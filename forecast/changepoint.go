package forecast

import (
	"math"
	"strconv"
)

// Changepoint describes a year that will change the ongoing trend slope
type Changepoint struct {
	Year int    `json:"year"`
	Name string `json:"name"`
}

func NewChangepoint(name string, year int) Changepoint {
	return Changepoint{Year: year, Name: name}
}

// generateAutoChangepoints places up to n changepoints on observed years spread uniformly over
// the first rng fraction of the history. The first observation never hosts a changepoint.
func generateAutoChangepoints(years []int, n int, rng float64) []Changepoint {
	histSize := int(math.Floor(float64(len(years)) * rng))
	if histSize < 2 || n <= 0 {
		return nil
	}
	n = min(n, histSize-1)

	chpts := make([]Changepoint, 0, n)
	seen := make(map[int]struct{}, n)
	step := float64(histSize-1) / float64(n)
	for i := 1; i <= n; i++ {
		idx := int(math.Round(step * float64(i)))
		if _, exists := seen[idx]; exists {
			continue
		}
		seen[idx] = struct{}{}
		chpts = append(chpts, NewChangepoint("auto_"+strconv.Itoa(len(chpts)), years[idx]))
	}
	return chpts
}
