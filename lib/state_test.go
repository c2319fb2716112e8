package lib

import (
    "bytes"
    "encoding/gob"
    "errors"
    "reflect"
    "testing"
)

func TestSaveStateRoundTrip(test *testing.T){
    apu := MakeAPU(RegionNTSC)
    playSomething(apu)
    apu.Run(10000)

    /* leave a $4017 write in flight */
    apu.Write4017(0x80)
    apu.Tick()

    var buffer bytes.Buffer
    err := apu.SaveState(&buffer)
    if err != nil {
        test.Fatalf("could not save state: %v", err)
    }

    restored := MakeAPU(RegionPAL)
    err = restored.LoadState(&buffer)
    if err != nil {
        test.Fatalf("could not load state: %v", err)
    }

    if restored.Timing.Region != RegionNTSC {
        test.Fatalf("region should come from the save state")
    }

    if !reflect.DeepEqual(apu.Snapshot(), restored.Snapshot()) {
        test.Fatalf("restored state differs from the saved state")
    }

    apu.Run(50000)
    restored.Run(50000)

    if restored.State.Mode != FrameMode1 {
        test.Fatalf("pending $4017 write was lost")
    }

    if !reflect.DeepEqual(apu.Snapshot(), restored.Snapshot()) {
        test.Fatalf("restored apu diverged from the original")
    }
}

func TestLoadStateVersion(test *testing.T){
    var buffer bytes.Buffer
    encoder := gob.NewEncoder(&buffer)
    err := encoder.Encode(saveState{Version: SaveStateVersion + 1, APU: MakeAPU(RegionNTSC).Snapshot()})
    if err != nil {
        test.Fatalf("encode failed: %v", err)
    }

    apu := MakeAPU(RegionNTSC)
    err = apu.LoadState(&buffer)
    if !errors.Is(err, ErrSaveStateVersion) {
        test.Fatalf("expected a version error but got %v", err)
    }
}

func TestRestoreBadDelayLine(test *testing.T){
    apu := MakeAPU(RegionNTSC)
    snapshot := apu.Snapshot()
    snapshot.FrameSlots = snapshot.FrameSlots[:1]

    if apu.Restore(snapshot) == nil {
        test.Fatalf("restore should reject a short delay line")
    }

    states := []FrameState{
        FrameState{Mode: FrameMode0, Step: 4},
        FrameState{Mode: FrameMode1, Step: 5},
        FrameState{Mode: FrameMode0, Step: -1},
        FrameState{Mode: FrameMode(2), Step: 0},
    }

    for _, state := range states {
        snapshot = MakeAPU(RegionNTSC).Snapshot()
        snapshot.State = state
        if apu.Restore(snapshot) == nil {
            test.Fatalf("restore should reject mode %v step %v", int(state.Mode), state.Step)
        }
    }

    /* the last step of each mode is still accepted and keeps sequencing */
    snapshot = MakeAPU(RegionNTSC).Snapshot()
    snapshot.State = FrameState{Mode: FrameMode1, Step: 4}
    err := apu.Restore(snapshot)
    if err != nil {
        test.Fatalf("mode1 step 4 should restore: %v", err)
    }
    apu.Run(37282 * 2)
    if apu.HalfFrames == 0 || apu.State.Step > 4 {
        test.Fatalf("sequencer stalled after restore: half=%v step=%v", apu.HalfFrames, apu.State.Step)
    }
}

func TestCopyIndependent(test *testing.T){
    apu := MakeAPU(RegionNTSC)
    apu.Write4017(0x80)

    copied := apu.Copy()
    copied.Run(3)

    if !copied.ModeSwitch {
        test.Fatalf("copy should resolve its own pending write")
    }
    if apu.ModeSwitch || apu.Cycles != 0 {
        test.Fatalf("ticking the copy changed the original")
    }

    apu.Run(4)
    if apu.State.Mode != FrameMode1 {
        test.Fatalf("original lost its pending write")
    }
}
