package lib

import (
    "log"
)

var ApuDebug int = 0

/* APU memory-mapped locations */
const (
    APUPulse1DutyCycle = 0x4000
    APUPulse1Sweep = 0x4001
    APUPulse1Timer = 0x4002
    APUPulse1Length = 0x4003
    APUPulse2DutyCycle = 0x4004
    APUPulse2Sweep = 0x4005
    APUPulse2Timer = 0x4006
    APUPulse2Length = 0x4007
    APUTriangleCounter = 0x4008
    APUTriangleIgnore = 0x4009
    APUTriangleTimerLow = 0x400A
    APUTriangleTimerHigh = 0x400B
    APUNoiseEnvelope = 0x400c
    APUNoiseIgnore = 0x400d
    APUNoiseMode = 0x400e
    APUNoiseLength = 0x400f
    APUDMCEnable = 0x4010
    APUDMCLoad = 0x4011
    APUDMCAddress = 0x4012
    APUDMCLength = 0x4013
    APUChannelEnable = 0x4015
    APUFrameCounter = 0x4017
    APUStatus = 0x4015 // for reading
)

/* cycles a $4017 write takes to resolve when written on an even cycle */
const FrameCounterDelay = 3

type FrameMode int

const (
    /* 4 steps, can raise the frame interrupt */
    FrameMode0 FrameMode = 0
    /* 5 steps, never interrupts */
    FrameMode1 FrameMode = 1
)

func (mode FrameMode) String() string {
    if mode == FrameMode1 {
        return "mode1"
    }
    return "mode0"
}

/* Selects the step handler that runs on the next Tick(). Even is the parity
 * of the cpu cycle that handler will process.
 */
type FrameState struct {
    Mode FrameMode
    Step int
    Even bool
}

/* called for every quarter/half frame clock, used by tracing tools */
type FrameListener func(event FrameEvent, cycle uint64)

type APUState struct {
    Timing FrameTiming

    /* cpu cycles since the last reset */
    Cycles uint64
    /* cycles since the current frame sequence started */
    StepCycles uint64
    State FrameState
    /* set when a $4017 write resolves, consumed by the next even cycle */
    ModeSwitch bool
    FrameRegister DelayedRegister[byte]

    InterruptInhibit bool
    FrameIRQAsserted bool

    QuarterFrames uint64
    HalfFrames uint64

    Pulse1 Pulse
    Pulse2 Pulse
    Triangle Triangle
    Noise Noise

    Listener FrameListener
}

func MakeAPU(region Region) *APUState {
    apu := &APUState{}
    apu.initialize(TimingFor(region))
    return apu
}

func (apu *APUState) onFrameRegister(newValue byte, oldValue byte) {
    if ApuDebug > 0 {
        log.Printf("APU: cycle %v $4017 resolved 0x%x (was 0x%x)", apu.Cycles, newValue, oldValue)
    }
    apu.ModeSwitch = true
}

func (apu *APUState) initialize(timing FrameTiming) {
    listener := apu.Listener
    *apu = APUState{
        Timing: timing,
        Pulse1: MakePulse("pulse1", true),
        Pulse2: MakePulse("pulse2", false),
        Noise: MakeNoise(timing),
        Listener: listener,
    }
    apu.FrameRegister = MakeDelayedRegister[byte](FrameCounterDelay, apu.onFrameRegister)
}

func (apu *APUState) Copy() *APUState {
    out := *apu
    out.FrameRegister = apu.FrameRegister.Copy()
    out.FrameRegister.Callback = out.onFrameRegister
    return &out
}

/* Power-on state: everything zeroed, noise shift register 1, mode 0 */
func (apu *APUState) ResetToKnown() {
    apu.initialize(apu.Timing)
    if ApuDebug > 0 {
        log.Printf("APU: reset to known state (%v)", apu.Timing.Region)
    }
}

/* The reset button. Channels are silenced and the frame sequence restarts,
 * but waveform phases, envelopes and the noise shift register keep their
 * values. The last $4017 value is written again so the mode survives.
 */
func (apu *APUState) ResetAnalog() {
    last := apu.FrameRegister.MostRecentValue()

    apu.WriteChannelEnable(0)
    apu.FrameIRQAsserted = false
    apu.ModeSwitch = false
    apu.Cycles = 0
    apu.StepCycles = 0
    apu.State = FrameState{
        Mode: apu.State.Mode,
        Step: 0,
        Even: false,
    }

    apu.FrameRegister.Clear()
    apu.FrameRegister.SetValue(last, false)
    apu.Write4017(last)

    if ApuDebug > 0 {
        log.Printf("APU: analog reset, rewriting $4017 with 0x%x", last)
    }
}

/* parity of the cycle most recently ticked, which is the cycle a register
 * write made now belongs to
 */
func (apu *APUState) IsEvenCycle() bool {
    return apu.Cycles & 0x1 == 0
}

/* advance one cpu cycle */
func (apu *APUState) Tick() {
    apu.Cycles += 1
    apu.FrameRegister.Tick()
    apu.tickFrame()
    apu.Triangle.Tick()
    apu.Noise.Tick()
}

func (apu *APUState) Run(cycles uint64) {
    for i := uint64(0); i < cycles; i++ {
        apu.Tick()
    }
}

func (apu *APUState) tickFrame() {
    if apu.State.Even {
        if apu.ModeSwitch {
            /* the pulse clock is skipped on the cycle the new mode starts */
            apu.ModeSwitch = false
            apu.restartSequence()
            apu.State.Even = false
            return
        }

        apu.Pulse1.Tick()
        apu.Pulse2.Tick()
    }

    apu.StepCycles += 1

    switch apu.State.Mode {
        case FrameMode0:
            switch apu.State.Step {
                case 0, 1, 2: apu.stepBoundary()
                case 3: apu.stepWrap(true)
            }
        case FrameMode1:
            switch apu.State.Step {
                case 0, 1, 2, 3: apu.stepBoundary()
                case 4: apu.stepWrap(false)
            }
    }

    apu.State.Even = !apu.State.Even
}

func (apu *APUState) stepBoundary() {
    mode := apu.State.Mode
    step := apu.State.Step
    if apu.StepCycles == apu.Timing.Boundary(mode, step) {
        apu.clockFrame(StepEvent(mode, step))
        apu.State.Step = step + 1
    }
}

/* the last step clocks one cycle before the sequence wraps */
func (apu *APUState) stepWrap(interrupts bool) {
    mode := apu.State.Mode
    step := apu.State.Step
    wrap := apu.Timing.Boundary(mode, step)

    if interrupts && apu.StepCycles + 2 >= wrap {
        apu.raiseFrameIRQ()
    }

    if apu.StepCycles + 1 == wrap {
        apu.clockFrame(StepEvent(mode, step))
    }

    if apu.StepCycles == wrap {
        apu.State.Step = 0
        apu.StepCycles = 0
    }
}

func (apu *APUState) raiseFrameIRQ() {
    if !apu.InterruptInhibit {
        apu.FrameIRQAsserted = true
    }
}

/* a resolved $4017 write restarts the sequence in the selected mode */
func (apu *APUState) restartSequence() {
    value := apu.FrameRegister.Value()
    mode := FrameMode0
    if value & 0x80 != 0 {
        mode = FrameMode1
    }

    apu.State.Mode = mode
    apu.State.Step = 0
    apu.StepCycles = 0

    if ApuDebug > 0 {
        log.Printf("APU: cycle %v frame sequencer restarted in %v", apu.Cycles, mode)
    }

    /* selecting the 5 step sequence clocks everything immediately */
    if mode == FrameMode1 {
        apu.clockFrame(FrameEventHalf)
    }
}

func (apu *APUState) clockFrame(event FrameEvent) {
    switch event {
        case FrameEventQuarter:
            apu.QuarterFrame()
        case FrameEventHalf:
            apu.QuarterFrame()
            apu.HalfFrame()
        default:
            return
    }

    if ApuDebug > 1 {
        log.Printf("APU: cycle %v %v frame, %v step %v", apu.Cycles, event, apu.State.Mode, apu.State.Step)
    }

    if apu.Listener != nil {
        apu.Listener(event, apu.Cycles)
    }
}

/* Quarter frame actions: envelope and triangle's linear counter */
func (apu *APUState) QuarterFrame() {
    apu.QuarterFrames += 1
    apu.Pulse1.QuarterFrame()
    apu.Pulse2.QuarterFrame()
    apu.Noise.QuarterFrame()
    apu.Triangle.QuarterFrame()
}

/* Half frame actions: length counters and sweep units */
func (apu *APUState) HalfFrame() {
    apu.HalfFrames += 1
    apu.Pulse1.HalfFrame()
    apu.Pulse2.HalfFrame()
    apu.Triangle.HalfFrame()
    apu.Noise.HalfFrame()
}

/* $4017: MI-- ----. The interrupt inhibit flag applies at once, the mode
 * after 3 cycles if written on an even cycle or 2 on an odd cycle.
 */
func (apu *APUState) Write4017(value byte) {
    interrupt := (value >> 6) & 0x1
    apu.InterruptInhibit = interrupt == 1

    /* Interrupt inhibit flag. If set, the frame interrupt flag is cleared, otherwise it is unaffected. */
    if interrupt == 1 {
        apu.FrameIRQAsserted = false
    }

    delay := 2
    if apu.IsEvenCycle() {
        delay = 3
    }

    if ApuDebug > 0 {
        log.Printf("APU: cycle %v write frame counter value=0x%x mode=%v delay=%v", apu.Cycles, value, value >> 7, delay)
    }

    apu.FrameRegister.WriteWithDelay(value, delay)
}

func (apu *APUState) WriteFrameCounter(value byte) {
    apu.Write4017(value)
}

func (apu *APUState) IsIRQAsserted() bool {
    return apu.FrameIRQAsserted
}

func (apu *APUState) WritePulse1Duty(value byte) {
    if ApuDebug > 0 {
        log.Printf("APU: write pulse1 duty value=%v duty=%v halt=%v constant=%v volume=%v", value, value >> 6, (value >> 5) & 1, (value >> 4) & 1, value & 0xf)
    }
    apu.Pulse1.WriteControl(value)
}

func (apu *APUState) WritePulse1Sweep(value byte) {
    if ApuDebug > 0 {
        log.Printf("APU: write pulse1 sweep value=%v", value)
    }
    apu.Pulse1.WriteSweep(value)
}

func (apu *APUState) WritePulse1Timer(value byte) {
    apu.Pulse1.WriteTimerLow(value)
    if ApuDebug > 0 {
        log.Printf("APU: write pulse1 timer low %v. Timer is now %v", value, apu.Pulse1.Sequencer.Period())
    }
}

func (apu *APUState) WritePulse1Length(value byte) {
    apu.Pulse1.WriteTimerHigh(value)
    if ApuDebug > 0 {
        log.Printf("APU: write pulse1 timer high %v length %v", value & 7, apu.Pulse1.Length.Counter)
    }
}

func (apu *APUState) WritePulse2Duty(value byte) {
    if ApuDebug > 0 {
        log.Printf("APU: write pulse2 duty value=%v duty=%v halt=%v constant=%v volume=%v", value, value >> 6, (value >> 5) & 1, (value >> 4) & 1, value & 0xf)
    }
    apu.Pulse2.WriteControl(value)
}

func (apu *APUState) WritePulse2Sweep(value byte) {
    if ApuDebug > 0 {
        log.Printf("APU: write pulse2 sweep %v", value)
    }
    apu.Pulse2.WriteSweep(value)
}

func (apu *APUState) WritePulse2Timer(value byte) {
    if ApuDebug > 0 {
        log.Printf("APU: write pulse2 timer %v", value)
    }
    apu.Pulse2.WriteTimerLow(value)
}

func (apu *APUState) WritePulse2Length(value byte) {
    apu.Pulse2.WriteTimerHigh(value)
    if ApuDebug > 0 {
        log.Printf("APU: write pulse2 timer high %v length %v", value & 7, apu.Pulse2.Length.Counter)
    }
}

func (apu *APUState) WriteTriangleCounter(value byte) {
    if ApuDebug > 0 {
        log.Printf("APU: write triangle counter %v", value)
    }
    apu.Triangle.WriteCounter(value)
}

func (apu *APUState) WriteTriangleTimerLow(value byte) {
    if ApuDebug > 0 {
        log.Printf("APU: write triangle timer low %v", value)
    }
    apu.Triangle.WriteTimerLow(value)
}

func (apu *APUState) WriteTriangleTimerHigh(value byte) {
    if ApuDebug > 0 {
        log.Printf("APU: write triangle timer high %v", value)
    }
    apu.Triangle.WriteTimerHigh(value)
}

func (apu *APUState) WriteNoiseEnvelope(value byte) {
    apu.Noise.WriteEnvelope(value)
}

func (apu *APUState) WriteNoiseMode(value byte) {
    if ApuDebug > 0 {
        log.Printf("APU: write noise mode value=%v mode=%v period=%v", value, (value >> 7) & 0x1, value & 0xf)
    }
    apu.Noise.WriteMode(value)
}

func (apu *APUState) WriteNoiseLength(value byte) {
    apu.Noise.WriteLength(value)
}

/* $4015: ---D NT21 */
func (apu *APUState) WriteChannelEnable(value byte) {
    noise := (value >> 3) & 0x1
    triangle := (value >> 2) & 0x1
    pulse2 := (value >> 1) & 0x1
    pulse1 := (value >> 0) & 0x1

    apu.Pulse1.SetEnabled(pulse1 == 0x1)
    apu.Pulse2.SetEnabled(pulse2 == 0x1)
    apu.Triangle.SetEnabled(triangle == 0x1)
    apu.Noise.SetEnabled(noise == 0x1)

    if ApuDebug > 0 {
        log.Printf("APU: write channel enable value=%v noise=%v triangle=%v pulse2=%v pulse1=%v", value, noise, triangle, pulse2, pulse1)
    }
}

func bool_to_byte(x bool) byte {
    if x {
        return 1
    }

    return 0
}

/* $4015 read: -F-- NT21, clears the frame interrupt flag */
func (apu *APUState) ReadStatus() byte {
    var frameInterrupt byte = bool_to_byte(apu.FrameIRQAsserted)
    var noise byte = bool_to_byte(apu.Noise.Length.Counter > 0)
    var triangle byte = bool_to_byte(apu.Triangle.Length.Counter > 0)
    var pulse2 byte = bool_to_byte(apu.Pulse2.Length.Counter > 0)
    var pulse1 byte = bool_to_byte(apu.Pulse1.Length.Counter > 0)

    apu.FrameIRQAsserted = false

    status := (frameInterrupt << 6) | (noise << 3) | (triangle << 2) | (pulse2 << 1) | (pulse1 << 0)

    if ApuDebug > 0 {
        log.Printf("Read status %08b F=%v N=%v T=%v 2=%v 1=%v", status, frameInterrupt, noise, triangle, pulse2, pulse1)
    }

    return status
}

/* Dispatch a cpu write in the $4000-$4017 range. Returns false if the
 * address does not belong to the apu.
 */
func (apu *APUState) WriteRegister(address uint16, value byte) bool {
    switch address {
        case APUPulse1DutyCycle:
            apu.WritePulse1Duty(value)
        case APUPulse1Sweep:
            apu.WritePulse1Sweep(value)
        case APUPulse1Timer:
            apu.WritePulse1Timer(value)
        case APUPulse1Length:
            apu.WritePulse1Length(value)
        case APUPulse2DutyCycle:
            apu.WritePulse2Duty(value)
        case APUPulse2Sweep:
            apu.WritePulse2Sweep(value)
        case APUPulse2Timer:
            apu.WritePulse2Timer(value)
        case APUPulse2Length:
            apu.WritePulse2Length(value)
        case APUTriangleCounter:
            apu.WriteTriangleCounter(value)
        case APUTriangleIgnore, APUNoiseIgnore:
            /* unused registers, some games write here anyway */
        case APUTriangleTimerLow:
            apu.WriteTriangleTimerLow(value)
        case APUTriangleTimerHigh:
            apu.WriteTriangleTimerHigh(value)
        case APUNoiseEnvelope:
            apu.WriteNoiseEnvelope(value)
        case APUNoiseMode:
            apu.WriteNoiseMode(value)
        case APUNoiseLength:
            apu.WriteNoiseLength(value)
        case APUDMCEnable, APUDMCLoad, APUDMCAddress, APUDMCLength:
            /* no dmc channel */
            if ApuDebug > 0 {
                log.Printf("APU: ignoring dmc write 0x%x=0x%x", address, value)
            }
        case APUChannelEnable:
            apu.WriteChannelEnable(value)
        case APUFrameCounter:
            apu.Write4017(value)
        default:
            return false
    }

    return true
}
