package state

// BeginFrame records that the producer is starting frameID at wall time
// timestamp. target must be the value returned by the GetWaitTarget call
// that immediately preceded it (0 if that call returned 0).
//
// Must be called exactly once per GetWaitTarget call; calling it twice for
// the same frame corrupts the ring slot (no failure is signalled).
func (s *State) BeginFrame(frameID, target, timestamp uint64) {
	slot := frameID % ringSize
	s.frameBeginIDs[slot] = frameID
	s.frameBeginTS[slot] = timestamp
	s.prevBeginID = frameID

	if target != 0 {
		// Absorb any wake-up slippage (OS scheduling jitter, or the producer
		// itself running late) into this frame's projection, so the
		// correction estimator doesn't mistake it for a pipeline delay.
		forced := int64(timestamp) - int64(target)
		s.projectedTS[slot] += forced
		s.compApplied[slot] += forced
		s.prevPredictionError += forced
	}
}
