// Package sla computes ticket working time and the pass/fail verdict against
// per-severity thresholds.
package sla

import (
	"math"
	"time"
)

const (
	StatusPassed = "Passed"
	StatusFailed = "Failed"
)

// Input carries ticket fields as stored. Empty strings mean absent.
type Input struct {
	Severity string

	AckDate string
	AckTime string

	RespondedDate string
	RespondedTime string

	AttendedDate string
	WorkEndTime  string

	Pause1Start string
	Pause1End   string
	Pause2Start string
	Pause2End   string

	ResolvedDate string
	ResolvedTime string
}

// Result fields are nil when their inputs are incomplete, so callers can
// write them straight back and clear stale values.
type Result struct {
	CountHours *float64
	Status     *string
}

// Calculate derives both SLA fields. Only the working-time count can fail;
// the status degrades to nil on any parse problem.
func Calculate(in Input) (Result, error) {
	hours, err := CountHours(in)
	if err != nil {
		return Result{}, err
	}
	return Result{CountHours: hours, Status: Status(in)}, nil
}

// CountHours is work end minus acknowledge, less up to two pauses, in hours
// rounded to two decimals.
func CountHours(in Input) (*float64, error) {
	if !present(in.AckDate, in.AckTime, in.AttendedDate, in.WorkEndTime) {
		return nil, nil
	}

	ack, err := combine(in.AckDate, in.AckTime)
	if err != nil {
		return nil, err
	}
	workEnd, err := combine(in.AttendedDate, in.WorkEndTime)
	if err != nil {
		return nil, err
	}

	remaining := workEnd.Sub(ack)
	if remaining < 0 {
		return nil, ErrNegativeDuration
	}

	for _, p := range [][2]string{{in.Pause1Start, in.Pause1End}, {in.Pause2Start, in.Pause2End}} {
		remaining, err = subtractPause(remaining, p[0], p[1])
		if err != nil {
			return nil, err
		}
	}

	hours := math.Max(remaining.Hours(), 0)
	hours = math.Round(hours*100) / 100
	return &hours, nil
}

func subtractPause(remaining time.Duration, start, end string) (time.Duration, error) {
	hasStart, hasEnd := present(start), present(end)
	if !hasStart && !hasEnd {
		return remaining, nil
	}
	if hasStart != hasEnd {
		return 0, ErrIncompletePause
	}

	s, err := ParseTimestamp(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseTimestamp(end)
	if err != nil {
		return 0, err
	}
	if !e.After(s) {
		return 0, ErrPauseRange
	}

	d := e.Sub(s)
	if d > remaining {
		return 0, ErrPauseTooLong
	}
	return remaining - d, nil
}

// Status is Passed when the ticket was resolved, and responded to if a
// response was recorded, within the severity's thresholds.
func Status(in Input) *string {
	th, ok := ThresholdFor(in.Severity)
	if !ok {
		return nil
	}
	if !present(in.AckDate, in.AckTime, in.ResolvedDate, in.ResolvedTime) {
		return nil
	}

	ack, err := combine(in.AckDate, in.AckTime)
	if err != nil {
		return nil
	}
	resolved, err := combine(in.ResolvedDate, in.ResolvedTime)
	if err != nil {
		return nil
	}

	passed := resolved.Sub(ack) <= th.Resolution

	if present(in.RespondedDate, in.RespondedTime) {
		responded, err := combine(in.RespondedDate, in.RespondedTime)
		if err != nil {
			return nil
		}
		passed = passed && responded.Sub(ack) <= th.Response
	}

	status := StatusFailed
	if passed {
		status = StatusPassed
	}
	return &status
}
