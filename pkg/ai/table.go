package ai

import "sync"

// taskTable stores finished tasks for synchronous providers so Get/Wait are
// simple lookups. Process-lifetime state: entries live until restart, which
// is an accepted growth bound for the expected call volume.
type taskTable struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

func newTaskTable() *taskTable {
	return &taskTable{tasks: make(map[string]*Task)}
}

func (t *taskTable) put(task *Task) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tasks[task.ID] = task
}

func (t *taskTable) get(id string) (*Task, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	task, ok := t.tasks[id]
	return task, ok
}
