package reactive

// Executor runs functions on the owner context of a set of fields.
// Post must not block.
type Executor interface {
	Post(fn func())
}

// ExecutorFunc adapts a function such as fyne.Do to an Executor.
type ExecutorFunc func(fn func())

// Post calls f(fn).
func (f ExecutorFunc) Post(fn func()) {
	f(fn)
}
