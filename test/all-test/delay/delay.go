package delay

/* $4017 write timing. A write on an even cycle resolves 3 cycles later, one
 * on an odd cycle 2 cycles later, and the new sequence always begins on an
 * even cycle. Writes on cycles 2n and 2n+1 therefore start the sequence on
 * the same cycle.
 */

import (
    "fmt"
    "log"

    "github.com/kazzmir/nes-apu/lib"
    test_utils "github.com/kazzmir/nes-apu/test/all-test/utils"
)

type DelayTest struct {
    WriteCycle uint64
    /* ticks until the write resolves */
    Resolve uint64
    /* cycle of the immediate half frame from entering mode 1 */
    Start uint64
}

func doTest(delayTest DelayTest) (bool, error) {
    apu := lib.MakeAPU(lib.RegionNTSC)

    var start uint64 = 0
    apu.Listener = func(event lib.FrameEvent, cycle uint64){
        if start == 0 && event == lib.FrameEventHalf {
            start = cycle
        }
    }

    apu.Run(delayTest.WriteCycle)
    apu.Write4017(0x80)

    for i := uint64(1); i < delayTest.Resolve; i++ {
        apu.Tick()
        if apu.ModeSwitch {
            log.Printf("write on cycle %v resolved after %v ticks", delayTest.WriteCycle, i)
            return false, nil
        }
    }

    apu.Tick()
    if !apu.ModeSwitch {
        log.Printf("write on cycle %v had not resolved after %v ticks", delayTest.WriteCycle, delayTest.Resolve)
        return false, nil
    }

    apu.Run(2)
    if start != delayTest.Start {
        log.Printf("write on cycle %v started the sequence on %v instead of %v", delayTest.WriteCycle, start, delayTest.Start)
        return false, nil
    }

    if apu.State.Mode != lib.FrameMode1 {
        return false, fmt.Errorf("mode is %v after the write", apu.State.Mode)
    }

    return true, nil
}

func Run(debug bool) (bool, error) {
    tests := []DelayTest{
        DelayTest{WriteCycle: 0, Resolve: 3, Start: 4},
        DelayTest{WriteCycle: 1, Resolve: 2, Start: 4},
        DelayTest{WriteCycle: 2, Resolve: 3, Start: 6},
        DelayTest{WriteCycle: 3, Resolve: 2, Start: 6},
        DelayTest{WriteCycle: 100, Resolve: 3, Start: 104},
        DelayTest{WriteCycle: 101, Resolve: 2, Start: 104},
    }

    if debug {
        lib.ApuDebug = 1
        defer func(){
            lib.ApuDebug = 0
        }()
    }

    allPassed := true
    for _, delayTest := range tests {
        name := fmt.Sprintf("$4017 write on cycle %v", delayTest.WriteCycle)
        passed, err := doTest(delayTest)
        if err != nil {
            return false, fmt.Errorf("%v: %w", name, err)
        }
        if passed {
            log.Print(test_utils.Success(name))
        } else {
            log.Print(test_utils.Failure(name))
            allPassed = false
        }
    }

    return allPassed, nil
}
