package lib

/* duty sequences, read from the high bit down as the step advances */
var DutyPatterns [4]byte = [4]byte{
    0b01000000,
    0b01100000,
    0b01111000,
    0b10011111,
}

func dutyBit(duty byte, step byte) byte {
    return (DutyPatterns[duty & 0x3] >> (7 - (step & 0x7))) & 0x1
}

type Pulse struct {
    Name string
    Sequencer Sequencer
    Envelope Envelope
    Length LengthCounter
    Sweep Sweep
    Duty byte
    /* length counter halt, which doubles as the envelope loop flag */
    Halt bool
    ConstantVolume bool
    Enabled bool
}

func MakePulse(name string, onesComplement bool) Pulse {
    return Pulse{
        Name: name,
        Sweep: Sweep{
            OnesComplement: onesComplement,
        },
    }
}

func (pulse *Pulse) Copy() Pulse {
    return *pulse
}

func (pulse *Pulse) ShouldTick(enabled bool) bool {
    return enabled
}

func (pulse *Pulse) Advance(sequencer *Sequencer) byte {
    sequencer.Step = (sequencer.Step + 1) & 0x7
    return dutyBit(pulse.Duty, sequencer.Step)
}

/* runs once per apu cycle, which is every other cpu cycle */
func (pulse *Pulse) Tick() byte {
    return pulse.Sequencer.TickSequencer(pulse.Enabled, pulse)
}

func (pulse *Pulse) QuarterFrame() {
    pulse.Envelope.TickEnvelope(pulse.ConstantVolume, pulse.Halt)
}

func (pulse *Pulse) HalfFrame() {
    pulse.Length.TickLengthCounter(pulse.Enabled, pulse.Halt)
    pulse.Sweep.Tick(&pulse.Sequencer)
}

func (pulse *Pulse) SetEnabled(enabled bool) {
    pulse.Enabled = enabled
    if !enabled {
        pulse.Length.Clear()
    }
}

/* $4000 / $4004: DDLC VVVV */
func (pulse *Pulse) WriteControl(value byte) {
    pulse.Duty = value >> 6
    pulse.Halt = (value >> 5) & 0x1 == 0x1
    pulse.ConstantVolume = (value >> 4) & 0x1 == 0x1
    pulse.Envelope.SetVolume(value & 0xf)
    /* a new duty takes effect at the current step */
    pulse.Sequencer.Output = dutyBit(pulse.Duty, pulse.Sequencer.Step)
}

/* $4001 / $4005 */
func (pulse *Pulse) WriteSweep(value byte) {
    pulse.Sweep.Set(value)
}

/* $4002 / $4006 */
func (pulse *Pulse) WriteTimerLow(value byte) {
    pulse.Sequencer.SetTimerLow(value)
}

/* $4003 / $4007: LLLL LTTT */
func (pulse *Pulse) WriteTimerHigh(value byte) {
    pulse.Sequencer.SetTimerHigh(value, true)
    pulse.Sequencer.Output = dutyBit(pulse.Duty, pulse.Sequencer.Step)
    if pulse.Enabled {
        pulse.Length.SetLengthCounter(value >> 3)
    }
    pulse.Envelope.RestartEnvelope()
}

func (pulse *Pulse) SequencerOutput() byte {
    return pulse.Sequencer.Output
}

func (pulse *Pulse) EnvelopeOutput() byte {
    return pulse.Envelope.Output(pulse.ConstantVolume)
}

/* digital level 0-15 */
func (pulse *Pulse) Sample() byte {
    if pulse.Length.Counter == 0 {
        return 0
    }

    if pulse.Sweep.Muted(pulse.Sequencer.Period()) {
        return 0
    }

    if pulse.Sequencer.Output == 0 {
        return 0
    }

    return pulse.EnvelopeOutput()
}
