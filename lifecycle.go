package gekko

// DespawnAfter removes the object with id once seconds of tick time have
// passed. A second call replaces the remaining time.
func (fw *Framework) DespawnAfter(id ObjectId, seconds float32) {
	if fw.lifetimes == nil {
		fw.lifetimes = make(map[ObjectId]float32)
	}
	fw.lifetimes[id] = seconds
}

// ageLifetimes counts down timed objects and queues the expired ones for
// removal at the end of the tick.
func (fw *Framework) ageLifetimes() {
	dt := fw.Time.DtSeconds()
	if dt <= 0 {
		return
	}
	for id, left := range fw.lifetimes {
		left -= dt
		if left > 0 {
			fw.lifetimes[id] = left
			continue
		}
		delete(fw.lifetimes, id)
		if _, live := fw.Registry.Lookup(id); !live {
			continue
		}
		fw.log.Debugf("lifetime of object %d expired", id)
		fw.Despawn(id)
	}
}
