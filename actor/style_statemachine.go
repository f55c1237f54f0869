package actor

// spawn creates, registers and starts a process, returning its PID. It is
// the common tail of Spawn and SpawnLinked.
func spawn(e *Engine, name string, st style, initial *Behavior) PID {
	p := newProcess(e, name, st, initial)
	p.start()
	return p.pid
}

// Spawn starts a state-machine style actor from a ready-made Behavior: the
// common case, CAF's sb_actor driven purely by become/unbecome. Use this
// when the behavior doesn't need to close over its own PID.
func Spawn(e *Engine, name string, initial *Behavior) PID {
	return spawn(e, name, styleEventBased, initial)
}

// SpawnLinked is Spawn plus an immediate link to parent.
func SpawnLinked(e *Engine, parent PID, name string, initial *Behavior) PID {
	pid := spawn(e, name, styleEventBased, initial)
	link(parent, pid)
	return pid
}
