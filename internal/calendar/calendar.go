// Package calendar holds the fixed weekly grid every timetable is laid on:
// six days, six intervals per day, the adjacent interval pairs that may host
// a lab block and the Saturday afternoon cutoff.
package calendar

// BufferHours is the minimum gap a teacher needs between the end of one
// session and the start of the next one on the same day.
const BufferHours = 2.0

type Interval struct {
	Label string
	Start float64
	End   float64
}

var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var Intervals = []Interval{
	{Label: "8:30-9:30", Start: 8.5, End: 9.5},
	{Label: "9:30-10:30", Start: 9.5, End: 10.5},
	{Label: "11:00-12:00", Start: 11.0, End: 12.0},
	{Label: "12:00-1:00", Start: 12.0, End: 13.0},
	{Label: "2:00-3:00", Start: 14.0, End: 15.0},
	{Label: "3:00-4:00", Start: 15.0, End: 16.0},
}

// LabPairs lists the interval pairs eligible for a double-length lab session
var LabPairs = [][2]uint64{{0, 1}, {2, 3}, {4, 5}}

const (
	saturday       uint64 = 5
	cutoffInterval uint64 = 4 // First disabled interval on saturday
)

func TotalDays() uint64 {
	return uint64(len(Days))
}

func TotalIntervals() uint64 {
	return uint64(len(Intervals))
}

func TotalPairs() uint64 {
	return uint64(len(LabPairs))
}

// Disabled reports whether the interval can never be occupied on the given day
func Disabled(day, interval uint64) bool {
	return day == saturday && interval >= cutoffInterval
}

// Usable returns the number of (day, interval) cells that can be occupied in a week
func Usable() uint64 {
	usable := uint64(0)
	for day := range TotalDays() {
		for interval := range TotalIntervals() {
			if !Disabled(day, interval) {
				usable++
			}
		}
	}
	return usable
}

// PairOf returns the lab pair containing the interval, if any
func PairOf(interval uint64) (uint64, bool) {
	for pair, intervals := range LabPairs {
		if intervals[0] == interval || intervals[1] == interval {
			return uint64(pair), true
		}
	}
	return 0, false
}

// PairDisabled reports whether a lab block cannot be held on the given day and pair
func PairDisabled(day, pair uint64) bool {
	return Disabled(day, LabPairs[pair][0]) || Disabled(day, LabPairs[pair][1])
}

// ConflictingPairs returns every (i, j), i < j, such that a session at j starts
// before the buffer after the end of a session at i has elapsed
func ConflictingPairs() [][2]uint64 {
	pairs := make([][2]uint64, 0)
	for i := range TotalIntervals() {
		for j := i + 1; j < TotalIntervals(); j++ {
			if Intervals[j].Start < Intervals[i].End+BufferHours {
				pairs = append(pairs, [2]uint64{i, j})
			}
		}
	}
	return pairs
}

// IsLabPair reports whether (i, j) is exactly one of the lab pairs
func IsLabPair(i, j uint64) (uint64, bool) {
	for pair, intervals := range LabPairs {
		if intervals[0] == i && intervals[1] == j {
			return uint64(pair), true
		}
	}
	return 0, false
}
