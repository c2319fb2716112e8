package lib

/*   http://wiki.nesdev.org/w/index.php/APU_Noise */
type Noise struct {
    Sequencer Sequencer
    Envelope Envelope
    Length LengthCounter
    /* 15-bit linear feedback shift register */
    ShiftRegister uint16
    /* feedback from bit 6 instead of bit 1 */
    Mode bool
    Halt bool
    ConstantVolume bool
    Enabled bool
    Periods [16]uint16
}

func MakeNoise(timing FrameTiming) Noise {
    /* On power-up, the shift register is loaded with the value 1 and the
     * period index is 0.
     */
    return Noise{
        Sequencer: Sequencer{
            Reload: timing.NoisePeriods[0] - 1,
        },
        ShiftRegister: 1,
        Periods: timing.NoisePeriods,
    }
}

func (noise *Noise) Copy() Noise {
    return *noise
}

func (noise *Noise) ShouldTick(enabled bool) bool {
    return enabled
}

/* shift the register once. the channel is audible when the new bit 0 is 0. */
func (noise *Noise) Advance(sequencer *Sequencer) byte {
    var tap uint16 = 1
    if noise.Mode {
        tap = 6
    }

    feedback := (noise.ShiftRegister & 0x1) ^ ((noise.ShiftRegister >> tap) & 0x1)
    noise.ShiftRegister = (noise.ShiftRegister >> 1) | (feedback << 14)

    if noise.ShiftRegister & 0x1 == 0 {
        return 1
    }
    return 0
}

/* the noise periods are in cpu cycles so this runs every cpu cycle */
func (noise *Noise) Tick() byte {
    return noise.Sequencer.TickSequencer(noise.Enabled, noise)
}

func (noise *Noise) QuarterFrame() {
    noise.Envelope.TickEnvelope(noise.ConstantVolume, noise.Halt)
}

func (noise *Noise) HalfFrame() {
    noise.Length.TickLengthCounter(noise.Enabled, noise.Halt)
}

func (noise *Noise) SetEnabled(enabled bool) {
    noise.Enabled = enabled
    if !enabled {
        noise.Length.Clear()
    }
}

/* $400C: --LC VVVV */
func (noise *Noise) WriteEnvelope(value byte) {
    noise.Halt = (value >> 5) & 0x1 == 0x1
    noise.ConstantVolume = (value >> 4) & 0x1 == 0x1
    noise.Envelope.SetVolume(value & 0xf)
}

/* $400E: M--- PPPP */
func (noise *Noise) WriteMode(value byte) {
    noise.Mode = (value >> 7) & 0x1 == 0x1
    noise.Sequencer.SetReload(noise.Periods[value & 0xf] - 1)
}

/* $400F: LLLL L--- */
func (noise *Noise) WriteLength(value byte) {
    if noise.Enabled {
        noise.Length.SetLengthCounter(value >> 3)
    }
    noise.Envelope.RestartEnvelope()
}

func (noise *Noise) SequencerOutput() byte {
    return noise.Sequencer.Output
}

func (noise *Noise) EnvelopeOutput() byte {
    return noise.Envelope.Output(noise.ConstantVolume)
}

/* digital level 0-15 */
func (noise *Noise) Sample() byte {
    if noise.Length.Counter == 0 || noise.Sequencer.Output == 0 {
        return 0
    }

    return noise.EnvelopeOutput()
}
