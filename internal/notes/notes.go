// Package notes builds human-readable coaching notes from a session's
// computed metrics, adapted from the teacher's free-text summary generator
// but driven by the D-typed outputs of the power, PMC, critical-power, and
// zone engines instead of ad hoc float64 analyzer fields.
package notes

import (
	"fmt"
	"strings"

	"trainload/internal/criticalpower"
	"trainload/internal/pmc"
	"trainload/internal/power"
	"trainload/internal/scalar"
	"trainload/internal/workout"
)

// Input bundles everything BuildTrainingNotes needs beyond the Workout
// itself; each field is optional (nil when not computed for this session).
type Input struct {
	TSS       *power.Result
	PMCPoint  *pmc.Point
	CPFit     *criticalpower.Fit
	WBalance  *criticalpower.BalanceTrace
}

// BuildTrainingNotes renders a multi-section plain-text summary for w,
// matching the teacher's section layout (session header, power/load line,
// physiology line, coaching notes) but sourcing every number from the
// D-typed engines rather than an ad hoc analyzer struct.
func BuildTrainingNotes(w *workout.Workout, in Input) string {
	if w == nil {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Session: %s\n", w.Sport)
	if !w.Date.IsZero() {
		fmt.Fprintf(&b, "Start: %s\n", w.Date.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(&b, "Duration %s\n", formatDuration(w.DurationS))

	if w.Summary.AvgPower != nil || w.Summary.NP != nil {
		fmt.Fprintf(&b, "Power %s avg / %s NP / %s max W | Work %s kJ\n",
			optD(w.Summary.AvgPower), optD(w.Summary.NP), optD(w.Summary.MaxPower), optD(w.Summary.TotalWorkKJ))
	}
	if w.Summary.AvgHR != nil {
		fmt.Fprintf(&b, "HR %s avg / %s max bpm | Cadence %s avg rpm\n",
			optD(w.Summary.AvgHR), optD(w.Summary.MaxHR), optD(w.Summary.AvgCadence))
	}

	if in.TSS != nil {
		if in.TSS.LowConfidence {
			fmt.Fprintf(&b, "Load estimated from duration only (no sufficient power/pace/HR coverage): TSS %s\n", in.TSS.TSS)
		} else {
			fmt.Fprintf(&b, "Load IF %s | TSS %s | path %s\n", in.TSS.IF, in.TSS.TSS, in.TSS.Path)
		}
	}

	if in.PMCPoint != nil {
		fmt.Fprintf(&b, "Fitness CTL %s | Fatigue ATL %s | Form TSB %s\n", in.PMCPoint.CTL, in.PMCPoint.ATL, in.PMCPoint.TSB)
	}

	if in.CPFit != nil {
		if in.CPFit.LowConfidence {
			b.WriteString("CP/W' fit: low confidence (insufficient anchor points or poor fit quality)\n")
		} else {
			fmt.Fprintf(&b, "CP %s W | W' %s J | r^2 %.3f\n", in.CPFit.CP, in.CPFit.WPrime, in.CPFit.RSquared)
		}
	}
	if in.WBalance != nil {
		fmt.Fprintf(&b, "Min W' balance %s J | time below zero %ds\n", in.WBalance.Min, in.WBalance.SecondsBelowZero)
	}

	if w.QualityFlags != nil {
		if flags := w.QualityFlags.All(); len(flags) > 0 {
			fmt.Fprintf(&b, "Quality flags: %s\n", strings.Join(flags, ", "))
		}
	}

	b.WriteString("\nCoaching Notes\n")
	b.WriteString("- ")
	b.WriteString(coachingAssessment(in))
	b.WriteString("\n- ")
	b.WriteString(nextSessionSuggestion(in))
	b.WriteByte('\n')

	return strings.TrimSpace(b.String())
}

func coachingAssessment(in Input) string {
	if in.TSS == nil {
		return "No load assessment available for this session."
	}
	ifFloat := in.TSS.IF.Float64()
	if in.PMCPoint != nil && in.PMCPoint.TSB.IsNegative() {
		return "Form is negative: recent training load exceeds fitness, prioritize recovery before the next hard day."
	}
	if ifFloat >= 0.9 {
		return "High-intensity load for this duration; prioritize sleep and fueling to absorb the session."
	}
	return "Aerobic load appears manageable and supports base development."
}

func nextSessionSuggestion(in Input) string {
	if in.TSS == nil {
		return "No recommendation available."
	}
	if in.WBalance != nil && in.WBalance.SecondsBelowZero > 0 {
		return "This session drew deep into anaerobic reserve; follow with an easy endurance day to consolidate."
	}
	if in.TSS.IF.Float64() >= 1.0 {
		return "Follow with an easier endurance day (Z1-Z2) to consolidate adaptations."
	}
	return "Maintain consistent endurance volume; build duration or intensity gradually from here."
}

func optD(d *scalar.D) string {
	if d == nil {
		return "n/a"
	}
	return d.String()
}

func formatDuration(seconds uint32) string {
	if seconds == 0 {
		return "0s"
	}
	s := int(seconds)
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}
