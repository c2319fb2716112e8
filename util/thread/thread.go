package thread

import (
    "sync"
    "context"
)

/* A set of goroutines sharing one cancellable context. Wait() blocks until
 * they have all returned and then cancels the context.
 */
type ThreadGroup struct {
    wait sync.WaitGroup
    quit context.Context
    cancel context.CancelFunc

    lock sync.Mutex
    err error
}

type ThreadFuncCancel func(quit context.Context, cancel context.CancelFunc)
type ThreadFuncError func(quit context.Context) error
type ThreadFunc func()

func NewThreadGroup(parent context.Context) *ThreadGroup {
    quit, cancel := context.WithCancel(parent)
    return &ThreadGroup{
        quit: quit,
        cancel: cancel,
    }
}

/* create a new group that can have its own set of threads.
 * the current group will wait for all subgroups to exit
 */
func (group *ThreadGroup) SubGroup() *ThreadGroup {
    out := NewThreadGroup(group.quit)

    group.wait.Add(1)
    go func(){
        defer group.wait.Done()
        <-out.quit.Done()
        out.wait.Wait()
    }()

    return out
}

func (group *ThreadGroup) SpawnWithCancel(f ThreadFuncCancel){
    group.wait.Add(1)
    go func(){
        defer group.wait.Done()
        f(group.quit, group.cancel)
    }()
}

/* the first error returned by any of these cancels the whole group */
func (group *ThreadGroup) SpawnError(f ThreadFuncError){
    group.wait.Add(1)
    go func(){
        defer group.wait.Done()
        err := f(group.quit)
        if err != nil {
            group.lock.Lock()
            if group.err == nil {
                group.err = err
            }
            group.lock.Unlock()
            group.cancel()
        }
    }()
}

func (group *ThreadGroup) Spawn(f ThreadFunc) {
    group.wait.Add(1)
    go func(){
        defer group.wait.Done()
        f()
    }()
}

func (group *ThreadGroup) Cancel(){
    group.cancel()
}

func (group *ThreadGroup) Context() context.Context {
    return group.quit
}

func (group *ThreadGroup) Done() <-chan struct{} {
    return group.quit.Done()
}

/* the first error from a SpawnError function, if any */
func (group *ThreadGroup) Err() error {
    group.lock.Lock()
    defer group.lock.Unlock()
    return group.err
}

func (group *ThreadGroup) Wait() error {
    group.wait.Wait()
    group.cancel()
    return group.Err()
}
