package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseDispatch  Phase = iota // 0: deliver last frame's events
	PhaseTrail                  // 1: age slash trail
	PhaseCombo                  // 2: finalize lapsed combos
	PhaseSpawn                  // 3: maybe spawn a batch
	PhasePhysics                // 4: integrate + prune out-of-bounds objects
	PhaseCollision              // 5: resolve slices against the newest trail segment
	PhaseEffects                // 6: particles + combo popups
	PhaseOutput                 // 7: render

	phaseCount = int(PhaseOutput) + 1
)

func (p Phase) String() string {
	switch p {
	case PhaseDispatch:
		return "dispatch"
	case PhaseTrail:
		return "trail"
	case PhaseCombo:
		return "combo"
	case PhaseSpawn:
		return "spawn"
	case PhasePhysics:
		return "physics"
	case PhaseCollision:
		return "collision"
	case PhaseEffects:
		return "effects"
	case PhaseOutput:
		return "output"
	default:
		return "unknown"
	}
}

// System is the interface every per-frame step implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
