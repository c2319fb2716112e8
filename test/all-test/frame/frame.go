package frame

/* Checks the frame sequencer's quarter and half frame clocks against the
 * published step boundaries
 *   http://wiki.nesdev.org/w/index.php/APU_Frame_Counter
 */

import (
    "fmt"
    "log"

    "github.com/kazzmir/nes-apu/lib"
    test_utils "github.com/kazzmir/nes-apu/test/all-test/utils"
)

const Sequences = 3

type Clock struct {
    Event lib.FrameEvent
    Cycle uint64
}

/* The clocks of a sequence that starts at offset. The last step of both
 * modes clocks one cycle before the wrap.
 */
func expectedClocks(timing lib.FrameTiming, mode lib.FrameMode, offset uint64) []Clock {
    var out []Clock
    wrap := timing.Wrap(mode)
    last := timing.Steps(mode) - 1

    for sequence := 0; sequence < Sequences; sequence++ {
        base := offset + uint64(sequence) * wrap
        for step := 0; step <= last; step++ {
            event := lib.StepEvent(mode, step)
            if event == lib.FrameEventNone {
                continue
            }
            cycle := base + timing.Boundary(mode, step)
            if step == last {
                cycle -= 1
            }
            out = append(out, Clock{Event: event, Cycle: cycle})
        }
    }

    return out
}

type FrameTest struct {
    Region lib.Region
    Mode lib.FrameMode
    /* write $4017 on cycle 0 */
    Write bool
}

func (frameTest FrameTest) Name() string {
    name := fmt.Sprintf("frame %v %v", frameTest.Region, frameTest.Mode)
    if frameTest.Write {
        name += " after $4017"
    }
    return name
}

func doTest(frameTest FrameTest, debug bool) (bool, error) {
    apu := lib.MakeAPU(frameTest.Region)

    var clocks []Clock
    apu.Listener = func(event lib.FrameEvent, cycle uint64){
        clocks = append(clocks, Clock{Event: event, Cycle: cycle})
    }

    var expected []Clock
    var offset uint64 = 0
    if frameTest.Write {
        var value byte = 0x00
        if frameTest.Mode == lib.FrameMode1 {
            value = 0x80
        }
        apu.Write4017(value)

        /* an even write resolves after 3 cycles, the sequence restarts on the next even cycle */
        offset = lib.FrameCounterDelay + 1
        if frameTest.Mode == lib.FrameMode1 {
            expected = append(expected, Clock{Event: lib.FrameEventHalf, Cycle: offset})
        }
    } else if frameTest.Mode != lib.FrameMode0 {
        return false, fmt.Errorf("power on always starts in mode 0")
    }

    expected = append(expected, expectedClocks(apu.Timing, frameTest.Mode, offset)...)
    apu.Run(offset + apu.Timing.Wrap(frameTest.Mode) * Sequences)

    if len(clocks) != len(expected) {
        if debug {
            log.Printf("expected %v", expected)
            log.Printf("actual   %v", clocks)
        }
        return false, nil
    }

    for i := range expected {
        if expected[i] != clocks[i] {
            if debug {
                log.Printf("clock %v: expected %v at %v but got %v at %v", i, expected[i].Event, expected[i].Cycle, clocks[i].Event, clocks[i].Cycle)
            }
            return false, nil
        }
    }

    return true, nil
}

func Run(debug bool) (bool, error) {
    var tests []FrameTest
    for _, region := range []lib.Region{lib.RegionNTSC, lib.RegionPAL} {
        tests = append(tests,
            FrameTest{Region: region, Mode: lib.FrameMode0, Write: false},
            FrameTest{Region: region, Mode: lib.FrameMode0, Write: true},
            FrameTest{Region: region, Mode: lib.FrameMode1, Write: true},
        )
    }

    allPassed := true
    for _, frameTest := range tests {
        passed, err := doTest(frameTest, debug)
        if err != nil {
            return false, err
        }
        if passed {
            log.Print(test_utils.Success(frameTest.Name()))
        } else {
            log.Print(test_utils.Failure(frameTest.Name()))
            allPassed = false
        }
    }

    return allPassed, nil
}
