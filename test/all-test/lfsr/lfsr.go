package lfsr

/* Period of the noise channel's shift register from the power on seed */

import (
    "fmt"
    "log"

    "github.com/kazzmir/nes-apu/lib"
    test_utils "github.com/kazzmir/nes-apu/test/all-test/utils"
)

type LFSRTest struct {
    Mode bool
    Period int
}

func period(mode bool) int {
    noise := lib.MakeNoise(lib.NTSCTiming)
    noise.Mode = mode
    /* seed 1 lies on the loop in both modes */
    seed := noise.ShiftRegister

    for count := 1; count <= 0x8000; count++ {
        noise.Advance(&noise.Sequencer)
        if noise.ShiftRegister == seed {
            return count
        }
    }

    return -1
}

func Run(debug bool) (bool, error) {
    tests := []LFSRTest{
        LFSRTest{Mode: false, Period: 32767},
        LFSRTest{Mode: true, Period: 93},
    }

    allPassed := true
    for _, lfsrTest := range tests {
        name := fmt.Sprintf("lfsr mode %v", map[bool]int{false: 0, true: 1}[lfsrTest.Mode])
        found := period(lfsrTest.Mode)
        if debug {
            log.Printf("%v: period %v", name, found)
        }
        if found == lfsrTest.Period {
            log.Print(test_utils.Success(name))
        } else {
            log.Printf("%v: expected period %v but got %v", name, lfsrTest.Period, found)
            log.Print(test_utils.Failure(name))
            allPassed = false
        }
    }

    return allPassed, nil
}
