package state

// GetWaitTarget returns the absolute monotonic timestamp at which the
// producer should be allowed to call BeginFrame(frameID, ...). It returns 0
// if no EndFrame has ever been observed (cold start).
func (s *State) GetWaitTarget(frameID uint64) uint64 {
	if !s.prevEndSet {
		return 0
	}

	phase := frameID % 2
	invtpt := s.invThroughputEst.Get()

	if !s.projectionBaseSet {
		s.projectionBase = s.prevEndTS
		s.projectionBaseSet = true
	} else {
		prevEndSlot := s.prevEndID % ringSize
		err := int64(s.prevEndTS) - (int64(s.projectionBase) + s.projectedTS[prevEndSlot])
		prevCompApplied := s.compApplied[prevEndSlot]

		s.projCorrectionEst.Update(correctionDelta(err, s.prevPredictionError, prevCompApplied))
		s.prevPredictionError = err
	}

	compToApply := roundInt64(s.projCorrectionEst.Get())
	targetSlot := frameID % ringSize
	s.compApplied[targetSlot] = compToApply

	phaseFactor := 1.0
	if phase == upPhase {
		phaseFactor = upFactor
	}

	prevBeginSlot := s.prevBeginID % ringSize
	k := int64(frameID) - int64(s.prevBeginID)

	target := int64(s.projectionBase) + s.projectedTS[prevBeginSlot] + compToApply +
		roundInt64((float64(k)+1/phaseFactor-1)*invtpt/downFactor-s.latencyEst.Get())

	newProjection := s.projectedTS[prevBeginSlot] + compToApply +
		roundInt64(float64(k)*invtpt/downFactor)
	s.projectedTS[targetSlot] = newProjection

	return uint64(target)
}

// correctionDelta computes the sample fed into the correction EWMA for a
// given prediction error. Only positive errors (things ran late) count, and
// the portion of the previous error already compensated for is subtracted
// out so a one-shot spike doesn't leave a sustained bias.
//
// Exposed as a pure function so its exact shape can be pinned down by tests
// independent of the rest of the ring-buffer bookkeeping.
func correctionDelta(err, prevPredictionError, prevCompApplied int64) float64 {
	posErr := maxF(0, float64(err))
	posPrevResidual := maxF(0, float64(prevPredictionError-prevCompApplied))
	return posErr - posPrevResidual
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
