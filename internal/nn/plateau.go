package nn

// PlateauScheduler reduces an optimizer's learning rate by a fixed
// multiplicative factor whenever the monitored loss fails to improve for
// patience consecutive epochs. No lower bound is enforced.
type PlateauScheduler struct {
	opt      *Adam
	factor   float64
	patience int

	best    float64
	hasBest bool
	badRuns int
}

// NewPlateauScheduler creates a scheduler over the given optimizer.
// The pipeline default is factor 0.1 with patience 5.
func NewPlateauScheduler(opt *Adam, factor float64, patience int) *PlateauScheduler {
	return &PlateauScheduler{opt: opt, factor: factor, patience: patience}
}

// Step feeds one epoch's monitored loss. Returns true when the learning
// rate was reduced this epoch.
func (s *PlateauScheduler) Step(loss float64) bool {
	if !s.hasBest || loss < s.best {
		s.best = loss
		s.hasBest = true
		s.badRuns = 0
		return false
	}

	s.badRuns++
	if s.badRuns < s.patience {
		return false
	}
	s.opt.SetLearningRate(s.opt.LearningRate() * s.factor)
	s.badRuns = 0
	return true
}
