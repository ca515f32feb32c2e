package state

// EndFrame reports that frameID completed at wall time timestamp. If the
// ring slot for frameID is not occupied by a matching BeginFrame (the frame
// was never begun, already ended, or has since been overwritten by a later
// frame 16+ ahead of it), it returns (Unavailable, Unavailable) and leaves
// all estimators untouched.
//
// The returned frameTime is always the clamped per-frame average; no
// unclamped frame time is reported. It is Unavailable until a previous
// EndFrame has been recorded for an earlier frame id.
func (s *State) EndFrame(frameID, timestamp uint64) (latency, frameTime uint64) {
	slot := frameID % ringSize
	if s.frameBeginIDs[slot] != frameID {
		return Unavailable, Unavailable
	}

	if s.targetFrameTime != 0 && s.prevEndSet {
		floor := s.prevEndTS + s.targetFrameTime
		if timestamp < floor {
			timestamp = floor
		}
	}

	frameStart := s.frameBeginTS[slot]
	s.frameBeginIDs[slot] = Unavailable

	phase := frameID % 2

	latencyVal := int64(timestamp) - int64(frameStart)
	if phase == downPhase && latencyVal >= 0 {
		s.latencyEst.Update(float64(latencyVal))
	}

	frameTimeVal := Unavailable
	if s.prevEndSet && frameID > s.prevEndID {
		framesElapsed := int64(frameID - s.prevEndID)
		raw := (int64(timestamp) - int64(s.prevEndTS)) / framesElapsed
		clamped := clampInt64(raw, minFrameTimeNS, maxFrameTimeNS)
		if phase == upPhase {
			s.invThroughputEst.Update(float64(clamped))
		}
		frameTimeVal = uint64(clamped)
	}

	s.prevEndID = frameID
	s.prevEndSet = true
	s.prevEndTS = timestamp

	return uint64(latencyVal), frameTimeVal
}
