package lib

var TriangleWaveForm [32]byte = [32]byte{
    15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
    0,  1,  2,  3,  4,  5,  6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

type Triangle struct {
    Sequencer Sequencer
    Length LengthCounter
    /* length counter halt, which doubles as the linear counter control flag */
    ControlFlag bool
    LinearCounterReloadFlag bool
    LinearCounterReload byte
    LinearCounter byte
    Enabled bool
}

func (triangle *Triangle) Copy() Triangle {
    return *triangle
}

/* the sequencer stops, holding its level, once either counter reaches 0 */
func (triangle *Triangle) ShouldTick(enabled bool) bool {
    return enabled && triangle.Length.Counter > 0 && triangle.LinearCounter > 0
}

func (triangle *Triangle) Advance(sequencer *Sequencer) byte {
    sequencer.Step = (sequencer.Step + 1) & 0x1f
    return TriangleWaveForm[sequencer.Step]
}

/* the triangle timer runs at the cpu rate */
func (triangle *Triangle) Tick() byte {
    return triangle.Sequencer.TickSequencer(triangle.Enabled, triangle)
}

func (triangle *Triangle) TickLinearCounter() {
    if triangle.LinearCounterReloadFlag {
        triangle.LinearCounter = triangle.LinearCounterReload
    } else if triangle.LinearCounter > 0 {
        triangle.LinearCounter -= 1
    }

    if !triangle.ControlFlag {
        triangle.LinearCounterReloadFlag = false
    }
}

func (triangle *Triangle) QuarterFrame() {
    triangle.TickLinearCounter()
}

func (triangle *Triangle) HalfFrame() {
    triangle.Length.TickLengthCounter(triangle.Enabled, triangle.ControlFlag)
}

func (triangle *Triangle) SetEnabled(enabled bool) {
    triangle.Enabled = enabled
    if !enabled {
        triangle.Length.Clear()
    }
}

/* $4008: CRRR RRRR */
func (triangle *Triangle) WriteCounter(value byte) {
    triangle.ControlFlag = (value >> 7) & 0x1 == 0x1
    triangle.LinearCounterReload = value & 0x7f
}

/* $400A */
func (triangle *Triangle) WriteTimerLow(value byte) {
    triangle.Sequencer.SetTimerLow(value)
}

/* $400B: LLLL LTTT, the waveform phase is left alone */
func (triangle *Triangle) WriteTimerHigh(value byte) {
    triangle.Sequencer.SetTimerHigh(value, false)
    if triangle.Enabled {
        triangle.Length.SetLengthCounter(value >> 3)
    }
    triangle.LinearCounterReloadFlag = true
}

func (triangle *Triangle) SequencerOutput() byte {
    return TriangleWaveForm[triangle.Sequencer.Step]
}

/* digital level 0-15 */
func (triangle *Triangle) Sample() byte {
    return TriangleWaveForm[triangle.Sequencer.Step]
}
