package arima

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidOrder = errors.New("invalid arima order")

// Order is the (p, d, q) specification of an ARIMA model
type Order struct {
	P int `json:"p" yaml:"p"`
	D int `json:"d" yaml:"d"`
	Q int `json:"q" yaml:"q"`
}

// DefaultOrder is ARIMA(2,1,2)
var DefaultOrder = Order{P: 2, D: 1, Q: 2}

// Validate rejects negative components and differencing above 2
func (o Order) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 {
		return fmt.Errorf("negative component in %s, %w", o, ErrInvalidOrder)
	}
	if o.D > 2 {
		return fmt.Errorf("differencing of %d is not supported, %w", o.D, ErrInvalidOrder)
	}
	return nil
}

func (o Order) String() string {
	return fmt.Sprintf("(%d,%d,%d)", o.P, o.D, o.Q)
}

// ParseOrder parses an order written as "p,d,q" with optional surrounding parentheses
func ParseOrder(s string) (Order, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Order{}, fmt.Errorf("expected p,d,q but got %q, %w", s, ErrInvalidOrder)
	}
	vals := make([]int, 3)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Order{}, fmt.Errorf("component %q is not an integer, %w", part, ErrInvalidOrder)
		}
		vals[i] = v
	}
	o := Order{P: vals[0], D: vals[1], Q: vals[2]}
	if err := o.Validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}
