package modes

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatClock renders seconds as M:SS, or H:MM:SS from one hour up.
func FormatClock(seconds int) string {
	seconds = max(seconds, 0)
	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ParseClock reads "MM", "MM:SS" or "HH:MM:SS" into a positive number of seconds.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidDuration)
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%q: %w", s, ErrInvalidDuration)
		}
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("%q: field %d out of range: %w", s, n, ErrInvalidDuration)
		}
		nums[i] = n
	}

	var total int
	switch len(nums) {
	case 1:
		total = nums[0] * 60
	case 2:
		total = nums[0]*60 + nums[1]
	case 3:
		total = nums[0]*3600 + nums[1]*60 + nums[2]
	}
	if total <= 0 {
		return 0, fmt.Errorf("%q must be positive: %w", s, ErrInvalidDuration)
	}
	return total, nil
}
