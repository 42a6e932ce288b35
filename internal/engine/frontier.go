package engine

// GenerationTask is one pending unit of expansion work: expand Parent,
// which ends the given path prefix at Depth, by generating its children.
// A task carries no behavior and is consumed exactly once by the scheduler.
type GenerationTask struct {
	// Prefix is the committed path ending at Parent, root included; the
	// seed task's prefix holds just the root.
	Prefix []*PathNode
	Parent *PathNode
	Depth  int
}

// frontier is the FIFO queue of pending generation tasks. FIFO order
// guarantees breadth at one depth is fully expanded before the next depth
// begins, which the depth-scaled prune threshold relies on. It holds task
// descriptors only; nodes are owned by the tree.
type frontier struct {
	tasks []GenerationTask
	head  int
}

func (f *frontier) push(t GenerationTask) {
	f.tasks = append(f.tasks, t)
}

func (f *frontier) pop() (GenerationTask, bool) {
	if f.head >= len(f.tasks) {
		return GenerationTask{}, false
	}
	t := f.tasks[f.head]
	f.tasks[f.head] = GenerationTask{}
	f.head++
	// Reclaim the consumed prefix of the backing array once it dominates.
	if f.head > 1024 && f.head*2 >= len(f.tasks) {
		f.tasks = append([]GenerationTask(nil), f.tasks[f.head:]...)
		f.head = 0
	}
	return t, true
}

func (f *frontier) len() int {
	return len(f.tasks) - f.head
}

func (f *frontier) reset() {
	f.tasks = nil
	f.head = 0
}
