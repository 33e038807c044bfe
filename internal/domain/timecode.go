package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

var timecodePattern = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})$`)

// Timecode is a wall-clock offset into a recording, second precision.
type Timecode struct {
	Hour   uint8
	Minute uint8
	Second uint8
}

// NewTimecode validates the individual clock components.
func NewTimecode(hour, minute, second uint8) (Timecode, error) {
	if hour > 23 || minute > 59 || second > 59 {
		return Timecode{}, fmt.Errorf("%w: timecode %02d:%02d:%02d", ErrUnknownEnum, hour, minute, second)
	}
	return Timecode{Hour: hour, Minute: minute, Second: second}, nil
}

// ParseTimecode converts the stored HH:MM:SS form back into a Timecode.
func ParseTimecode(s string) (Timecode, error) {
	m := timecodePattern.FindStringSubmatch(s)
	if m == nil {
		return Timecode{}, fmt.Errorf("%w: timecode %q", ErrUnknownEnum, s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second, _ := strconv.Atoi(m[3])
	return NewTimecode(uint8(hour), uint8(minute), uint8(second))
}

func (t Timecode) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}
