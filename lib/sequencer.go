package lib

/* The waveform specific half of a Sequencer. Pulse, triangle and noise each
 * decide when their timer may count and what a timer underflow does.
 */
type SequenceStepper interface {
    /* whether the timer counts down this cycle */
    ShouldTick(enabled bool) bool
    /* advance the waveform by one step and return the new output */
    Advance(sequencer *Sequencer) byte
}

/* Timer/divider plus a rotating step index. Reload is the 11-bit period
 * assembled from the timer low/high registers.
 */
type Sequencer struct {
    Reload uint16
    Timer uint16
    /* position within the waveform, meaning depends on the stepper */
    Step byte
    Output byte
}

/* Count the timer down once. The stepper fires when the timer underflows
 * past 0, so a reload of N fires every N+1 ticks.
 */
func (sequencer *Sequencer) TickSequencer(enabled bool, stepper SequenceStepper) byte {
    if !stepper.ShouldTick(enabled) {
        return sequencer.Output
    }

    sequencer.Timer -= 1
    if sequencer.Timer == 0xffff {
        sequencer.Timer = sequencer.Reload
        sequencer.Output = stepper.Advance(sequencer)
    }

    return sequencer.Output
}

func (sequencer *Sequencer) SetTimerLow(value byte) {
    sequencer.Reload = (sequencer.Reload & 0x700) | uint16(value)
}

/* only the low 3 bits of value are used. restart reloads the timer and
 * puts the waveform back at its first step.
 */
func (sequencer *Sequencer) SetTimerHigh(value byte, restart bool) {
    sequencer.Reload = (sequencer.Reload & 0xff) | (uint16(value & 0x7) << 8)
    if restart {
        sequencer.Timer = sequencer.Reload
        sequencer.Step = 0
    }
}

/* set the full period directly, used by the sweep unit and the noise table */
func (sequencer *Sequencer) SetReload(value uint16) {
    sequencer.Reload = value
}

func (sequencer *Sequencer) Period() uint16 {
    return sequencer.Reload
}
