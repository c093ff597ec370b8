package runtime

import "context"

// Context provides the outside context in which a graph execution
// runs.  Cancellation is cooperative: the executor consults the
// context between nodes and stops with a Cancelled diagnostic.
type Context struct {
	context.Context
	cancel context.CancelFunc
}

func NewContext(ctx context.Context) *Context {
	ctx, cancel := context.WithCancel(ctx)
	return &Context{Context: ctx, cancel: cancel}
}

func DefaultContext() *Context {
	return NewContext(context.Background())
}

// Cancel cancels the context.  Execution in flight stops at the next
// node boundary; the port-value table is disposable so no partial
// mutations survive.
func (c *Context) Cancel() {
	c.cancel()
}
