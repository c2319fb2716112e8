package lib

import (
    "encoding/gob"
    "errors"
    "fmt"
    "io"
)

const SaveStateVersion = 1

var ErrSaveStateVersion error = errors.New("unsupported save state version")

/* Everything needed to resume the apu on exactly the same cycle */
type APUSnapshot struct {
    Region Region
    Cycles uint64
    StepCycles uint64
    State FrameState
    ModeSwitch bool
    FrameSlots []DelayedSlot[byte]
    FrameRecent byte
    InterruptInhibit bool
    FrameIRQAsserted bool
    QuarterFrames uint64
    HalfFrames uint64
    Pulse1 Pulse
    Pulse2 Pulse
    Triangle Triangle
    Noise Noise
}

type saveState struct {
    Version int
    APU APUSnapshot
}

func (apu *APUState) Snapshot() APUSnapshot {
    slots := make([]DelayedSlot[byte], len(apu.FrameRegister.Slots))
    copy(slots, apu.FrameRegister.Slots)

    return APUSnapshot{
        Region: apu.Timing.Region,
        Cycles: apu.Cycles,
        StepCycles: apu.StepCycles,
        State: apu.State,
        ModeSwitch: apu.ModeSwitch,
        FrameSlots: slots,
        FrameRecent: apu.FrameRegister.Recent,
        InterruptInhibit: apu.InterruptInhibit,
        FrameIRQAsserted: apu.FrameIRQAsserted,
        QuarterFrames: apu.QuarterFrames,
        HalfFrames: apu.HalfFrames,
        Pulse1: apu.Pulse1.Copy(),
        Pulse2: apu.Pulse2.Copy(),
        Triangle: apu.Triangle.Copy(),
        Noise: apu.Noise.Copy(),
    }
}

/* the listener is left as it was */
func (apu *APUState) Restore(snapshot APUSnapshot) error {
    if len(snapshot.FrameSlots) != FrameCounterDelay + 1 {
        return fmt.Errorf("frame counter delay line has %v slots, expected %v", len(snapshot.FrameSlots), FrameCounterDelay + 1)
    }

    if snapshot.State.Mode != FrameMode0 && snapshot.State.Mode != FrameMode1 {
        return fmt.Errorf("unknown frame mode %v", int(snapshot.State.Mode))
    }

    timing := TimingFor(snapshot.Region)
    if snapshot.State.Step < 0 || snapshot.State.Step >= timing.Steps(snapshot.State.Mode) {
        return fmt.Errorf("frame step %v does not exist in %v", snapshot.State.Step, snapshot.State.Mode)
    }

    apu.initialize(timing)

    apu.Cycles = snapshot.Cycles
    apu.StepCycles = snapshot.StepCycles
    apu.State = snapshot.State
    apu.ModeSwitch = snapshot.ModeSwitch
    copy(apu.FrameRegister.Slots, snapshot.FrameSlots)
    apu.FrameRegister.Recent = snapshot.FrameRecent
    apu.InterruptInhibit = snapshot.InterruptInhibit
    apu.FrameIRQAsserted = snapshot.FrameIRQAsserted
    apu.QuarterFrames = snapshot.QuarterFrames
    apu.HalfFrames = snapshot.HalfFrames
    apu.Pulse1 = snapshot.Pulse1
    apu.Pulse2 = snapshot.Pulse2
    apu.Triangle = snapshot.Triangle
    apu.Noise = snapshot.Noise

    return nil
}

func (apu *APUState) SaveState(writer io.Writer) error {
    encoder := gob.NewEncoder(writer)
    return encoder.Encode(saveState{
        Version: SaveStateVersion,
        APU: apu.Snapshot(),
    })
}

func (apu *APUState) LoadState(reader io.Reader) error {
    var state saveState
    decoder := gob.NewDecoder(reader)
    err := decoder.Decode(&state)
    if err != nil {
        return fmt.Errorf("could not decode save state: %v", err)
    }

    if state.Version != SaveStateVersion {
        return fmt.Errorf("%w: %v", ErrSaveStateVersion, state.Version)
    }

    return apu.Restore(state.APU)
}
