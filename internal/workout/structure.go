package workout

import "trainload/internal/scalar"

// Structure is the supplemental prescribed/executed-block view of a session
// (SPEC_FULL.md §5, "4.C Record-stream decoder — supplement"). It is derived purely
// from Laps and is never required for the core metric engines; dropping it
// changes nothing about NP/TSS/PMC/CP correctness.
type Structure struct {
	CanonicalLabel string
	Confidence     float64
	Blocks         []Block
	MainSet        *MainSet
}

// Block is one contiguous labeled section of a session.
type Block struct {
	Kind        BlockKind
	StartLap    int
	EndLap      int
	StartOffset uint32
	EndOffset   uint32
	AvgPower    *scalar.D
	AvgHR       *scalar.D
	AvgCadence  *scalar.D
	Description string
}

// BlockKind is the closed set of block labels this inference produces.
type BlockKind int

const (
	BlockWarmup BlockKind = iota
	BlockOpeners
	BlockMainSetWork
	BlockMainSetRecovery
	BlockCooldown
	BlockSteady
	BlockEasy
)

func (k BlockKind) String() string {
	switch k {
	case BlockWarmup:
		return "warmup"
	case BlockOpeners:
		return "openers"
	case BlockMainSetWork:
		return "main_set_work"
	case BlockMainSetRecovery:
		return "main_set_recovery"
	case BlockCooldown:
		return "cooldown"
	case BlockSteady:
		return "steady"
	default:
		return "easy"
	}
}

// MainSet captures the primary interval structure of the session.
type MainSet struct {
	Reps               int
	WorkDurationS       uint32
	RecoveryDurationS   uint32
	WorkAvgPower        *scalar.D
	RecoveryAvgPower    *scalar.D
}

// InferStructure labels laps into warmup/main-set/cooldown blocks using a
// power-relative-to-FTP threshold heuristic, the same shape the teacher's
// structure.go uses for its block detection.
func InferStructure(laps []Lap, ftp *scalar.D) Structure {
	if len(laps) == 0 {
		return Structure{CanonicalLabel: "unable to infer workout structure (no lap data)", Confidence: 0.2}
	}

	mainStart, mainEnd := detectMainSet(laps, ftp)

	s := Structure{Confidence: 0.3}
	used := make([]bool, len(laps))
	add := func(kind BlockKind, start, end int, desc string) {
		if start < 0 || end < start || start >= len(laps) {
			return
		}
		if end >= len(laps) {
			end = len(laps) - 1
		}
		s.Blocks = append(s.Blocks, buildBlock(laps, kind, start, end, desc))
		for i := start; i <= end; i++ {
			used[i] = true
		}
	}

	if mainStart > 0 {
		add(BlockWarmup, 0, mainStart-1, "aerobic warmup before intensity")
		s.Confidence += 0.1
	}
	if mainStart >= 0 {
		reps := 0
		var workTotal, workCount, recTotal, recCount scalar.D
		var workDur, recDur uint32
		for i := mainStart; i <= mainEnd; i++ {
			if isWorkLap(laps[i], ftp) {
				reps++
				if laps[i].AvgPower != nil {
					workTotal = workTotal.Add(*laps[i].AvgPower)
					workCount = workCount.Add(scalar.FromInt(1))
				}
				workDur += laps[i].DurationS()
				add(BlockMainSetWork, i, i, "main set work interval")
			} else {
				if laps[i].AvgPower != nil {
					recTotal = recTotal.Add(*laps[i].AvgPower)
					recCount = recCount.Add(scalar.FromInt(1))
				}
				recDur += laps[i].DurationS()
				add(BlockMainSetRecovery, i, i, "main set recovery interval")
			}
		}
		if reps > 0 {
			ms := &MainSet{Reps: reps, WorkDurationS: workDur, RecoveryDurationS: recDur}
			if !workCount.IsZero() {
				if avg, ok := workTotal.Div(workCount, 1); ok {
					ms.WorkAvgPower = &avg
				}
			}
			if !recCount.IsZero() {
				if avg, ok := recTotal.Div(recCount, 1); ok {
					ms.RecoveryAvgPower = &avg
				}
			}
			s.MainSet = ms
			s.Confidence += 0.3
		}
		if mainEnd < len(laps)-1 {
			add(BlockCooldown, mainEnd+1, len(laps)-1, "cooldown after intensity")
			s.Confidence += 0.1
		}
	}
	for i, u := range used {
		if !u {
			add(BlockEasy, i, i, "unclassified lap")
		}
	}
	if s.MainSet != nil {
		s.CanonicalLabel = "structured interval session"
	} else {
		s.CanonicalLabel = "steady-state session"
	}
	if s.Confidence > 1 {
		s.Confidence = 1
	}
	return s
}

func buildBlock(laps []Lap, kind BlockKind, start, end int, desc string) Block {
	b := Block{Kind: kind, StartLap: start, EndLap: end, Description: desc}
	b.StartOffset = laps[start].StartOffset
	b.EndOffset = laps[end].EndOffset
	var powerSum, hrSum, cadSum, powerN, hrN, cadN scalar.D
	for i := start; i <= end; i++ {
		if laps[i].AvgPower != nil {
			powerSum = powerSum.Add(*laps[i].AvgPower)
			powerN = powerN.Add(scalar.FromInt(1))
		}
		if laps[i].AvgHR != nil {
			hrSum = hrSum.Add(*laps[i].AvgHR)
			hrN = hrN.Add(scalar.FromInt(1))
		}
		if laps[i].AvgCadence != nil {
			cadSum = cadSum.Add(*laps[i].AvgCadence)
			cadN = cadN.Add(scalar.FromInt(1))
		}
	}
	if !powerN.IsZero() {
		if avg, ok := powerSum.Div(powerN, 1); ok {
			b.AvgPower = &avg
		}
	}
	if !hrN.IsZero() {
		if avg, ok := hrSum.Div(hrN, 1); ok {
			b.AvgHR = &avg
		}
	}
	if !cadN.IsZero() {
		if avg, ok := cadSum.Div(cadN, 1); ok {
			b.AvgCadence = &avg
		}
	}
	return b
}

// detectMainSet finds the contiguous window of laps whose power alternates
// above/below a mid threshold relative to FTP, the signature of an interval
// set as opposed to a steady ride.
func detectMainSet(laps []Lap, ftp *scalar.D) (start, end int) {
	if ftp == nil {
		return -1, -1
	}
	start, end = -1, -1
	for i, l := range laps {
		if isWorkLap(l, ftp) {
			if start == -1 {
				start = i
			}
			end = i
		}
	}
	if start == -1 {
		return -1, -1
	}
	// extend end to include the recovery lap after the final work interval,
	// unless that lap is the session's last lap, which is left for cooldown.
	if end+1 < len(laps) && !isWorkLap(laps[end+1], ftp) && end+1 != len(laps)-1 {
		end++
	}
	return start, end
}

func isWorkLap(l Lap, ftp *scalar.D) bool {
	if l.AvgPower == nil || ftp == nil || ftp.IsZero() {
		return false
	}
	ratio, ok := l.AvgPower.Div(*ftp, 3)
	if !ok {
		return false
	}
	return ratio.GreaterThan(scalar.MustNew("0.88"))
}
