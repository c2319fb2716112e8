package lib

/* invoked once per real write when it reaches the resolved slot */
type DelayedCallback[T any] func(newValue T, oldValue T)

type DelayedSlot[T any] struct {
    Value T
    Written bool
}

/* A register whose writes take effect a fixed number of cycles later.
 *
 * Slots[0..Delay-1] hold writes in flight, Slots[Delay] is the resolved value.
 * A write with delay d is placed at Slots[Delay - d] and moves one slot
 * toward the resolved slot on every Tick().
 */
type DelayedRegister[T any] struct {
    Delay int
    Slots []DelayedSlot[T]
    Recent T
    Callback DelayedCallback[T]
}

func MakeDelayedRegister[T any](delay int, callback DelayedCallback[T]) DelayedRegister[T] {
    if delay < 0 {
        delay = 0
    }

    return DelayedRegister[T]{
        Delay: delay,
        Slots: make([]DelayedSlot[T], delay + 1),
        Callback: callback,
    }
}

/* the value that has already taken effect */
func (register *DelayedRegister[T]) Value() T {
    return register.Slots[register.Delay].Value
}

/* the last value written, which may still be in flight */
func (register *DelayedRegister[T]) MostRecentValue() T {
    return register.Recent
}

/* true if some write has not reached the resolved slot yet */
func (register *DelayedRegister[T]) Pending() bool {
    for i := 0; i < register.Delay; i++ {
        if register.Slots[i].Written {
            return true
        }
    }

    return false
}

func (register *DelayedRegister[T]) fire(newValue T, oldValue T) {
    if register.Callback != nil {
        register.Callback(newValue, oldValue)
    }
}

/* schedule value to resolve after delay ticks. a delay larger than the
 * register's own delay is clamped to it.
 */
func (register *DelayedRegister[T]) WriteWithDelay(value T, delay int) {
    register.Recent = value

    if delay > register.Delay {
        delay = register.Delay
    }

    if delay <= 0 {
        old := register.Slots[register.Delay].Value
        register.Slots[register.Delay].Value = value
        register.fire(value, old)
        return
    }

    /* a later write landing in an occupied slot replaces the earlier one */
    register.Slots[register.Delay - delay] = DelayedSlot[T]{
        Value: value,
        Written: true,
    }
}

func (register *DelayedRegister[T]) Write(value T) {
    register.WriteWithDelay(value, register.Delay)
}

/* set the resolved value immediately. writes already in flight still land. */
func (register *DelayedRegister[T]) SetValue(value T, callback bool) {
    old := register.Slots[register.Delay].Value
    register.Slots[register.Delay].Value = value
    register.Recent = value
    if callback {
        register.fire(value, old)
    }
}

/* must be called once per cycle whether or not a write is pending */
func (register *DelayedRegister[T]) Tick() {
    if register.Delay == 0 {
        return
    }

    last := register.Delay - 1
    arriving := register.Slots[last]

    for i := last; i > 0; i-- {
        register.Slots[i] = register.Slots[i - 1]
    }
    register.Slots[0] = DelayedSlot[T]{}

    if arriving.Written {
        old := register.Slots[register.Delay].Value
        register.Slots[register.Delay].Value = arriving.Value
        register.fire(arriving.Value, old)
    }
}

/* drop everything in flight and zero the resolved value. no callback fires. */
func (register *DelayedRegister[T]) Clear() {
    for i := 0; i < register.Delay; i++ {
        register.Slots[i] = DelayedSlot[T]{}
    }
    register.Slots[register.Delay] = DelayedSlot[T]{}
    var zero T
    register.Recent = zero
}

func (register *DelayedRegister[T]) Copy() DelayedRegister[T] {
    slots := make([]DelayedSlot[T], len(register.Slots))
    copy(slots, register.Slots)
    return DelayedRegister[T]{
        Delay: register.Delay,
        Slots: slots,
        Recent: register.Recent,
        Callback: register.Callback,
    }
}
