package server

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/aouyang1/go-warming/scenario"
)

const (
	formatJSON = "json"
	formatHTML = "html"
	formatPNG  = "png"
)

func queryFloat(q url.Values, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a number, %w", key, raw, ErrBadParam)
	}
	return v, nil
}

func queryInt(q url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not an integer, %w", key, raw, ErrBadParam)
	}
	return v, nil
}

// queryOffsets reads the co2, ch4 and n2o offsets and clamps them to the slider bounds.
// Missing offsets are zero.
func queryOffsets(q url.Values) (scenario.Offsets, error) {
	var off scenario.Offsets
	var err error
	if off.CO2, err = queryFloat(q, "co2", 0); err != nil {
		return off, err
	}
	if off.CH4, err = queryFloat(q, "ch4", 0); err != nil {
		return off, err
	}
	if off.N2O, err = queryFloat(q, "n2o", 0); err != nil {
		return off, err
	}
	if err := off.Validate(); err != nil {
		return off, err
	}
	return SliderBounds.Clamp(off), nil
}

func (s *Server) queryHorizon(q url.Values) (int, error) {
	h, err := queryInt(q, "horizon", s.opt.Horizon)
	if err != nil {
		return 0, err
	}
	if h < 1 || h > MaxHorizon {
		return 0, fmt.Errorf("horizon %d outside [1, %d], %w", h, MaxHorizon, ErrBadParam)
	}
	return h, nil
}

func queryFormat(q url.Values, allowed ...string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(q.Get("format")))
	if format == "" {
		return allowed[0], nil
	}
	for _, a := range allowed {
		if format == a {
			return format, nil
		}
	}
	return "", fmt.Errorf("format=%q, expected one of %s, %w", format, strings.Join(allowed, ", "), ErrBadParam)
}
