package domain

// WorkerSlot is an isolated working directory statically bound to one
// scheduler worker goroutine. The slot directory exclusively owns every
// transient file of whichever task currently occupies it: the copied case
// source, the produced assembly, and the temporary reference binary.
// Successive occupants overwrite those files rather than cleaning them.
type WorkerSlot struct {
	Index int
	Dir   string
}
