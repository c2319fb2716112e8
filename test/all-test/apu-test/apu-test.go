package aputest

/* Register level checks modelled on blargg's apu tests
 *   http://wiki.nesdev.org/w/index.php/Emulator_tests
 *
 * Each test is a register script followed by $4015 reads on given cycles.
 */

import (
    "fmt"
    "log"
    "strings"

    "github.com/kazzmir/nes-apu/lib"
    "github.com/kazzmir/nes-apu/player"
    test_utils "github.com/kazzmir/nes-apu/test/all-test/utils"
)

type StatusCheck struct {
    Cycle uint64
    Mask byte
    Expect byte
}

type APUTest struct {
    Name string
    Script string
    Checks []StatusCheck
}

func doTest(apuTest APUTest) (bool, error) {
    script, err := player.ParseScript(strings.NewReader(apuTest.Script))
    if err != nil {
        return false, err
    }

    scriptPlayer := player.MakeScriptPlayer(script, lib.RegionNTSC, 44100)
    for _, check := range apuTest.Checks {
        if check.Cycle < scriptPlayer.APU.Cycles {
            return false, fmt.Errorf("checks must be in cycle order, %v is in the past", check.Cycle)
        }
        scriptPlayer.RunTo(check.Cycle)
        status := scriptPlayer.APU.ReadStatus()
        if status & check.Mask != check.Expect {
            log.Printf("%v: cycle %v expected $%02x but read $%02x (mask $%02x)", apuTest.Name, check.Cycle, check.Expect, status & check.Mask, check.Mask)
            return false, nil
        }
    }

    return true, nil
}

func Run(debug bool) (bool, error) {
    tests := []APUTest{
        APUTest{
            Name: "len_ctr",
            Script: `
                0 $4015 $01
                0 $4000 $10
                0 $4003 $18
                0 $4017 $00
            `,
            /* length 2 runs out at the second half frame */
            Checks: []StatusCheck{
                StatusCheck{Cycle: 100, Mask: 0x01, Expect: 0x01},
                StatusCheck{Cycle: 20000, Mask: 0x01, Expect: 0x01},
                StatusCheck{Cycle: 35000, Mask: 0x01, Expect: 0x00},
            },
        },
        APUTest{
            Name: "len_halt",
            Script: `
                0 $4015 $01
                0 $4000 $30
                0 $4003 $18
            `,
            Checks: []StatusCheck{
                StatusCheck{Cycle: 60000, Mask: 0x01, Expect: 0x01},
            },
        },
        APUTest{
            Name: "len_disable",
            Script: `
                0 $4015 $0f
                0 $4003 $f8
                0 $4007 $f8
                0 $400b $f8
                0 $400f $f8
                100 $4015 $00
            `,
            Checks: []StatusCheck{
                StatusCheck{Cycle: 50, Mask: 0x0f, Expect: 0x0f},
                StatusCheck{Cycle: 200, Mask: 0x0f, Expect: 0x00},
            },
        },
        APUTest{
            Name: "irq_flag",
            Script: `
                0 $4017 $00
            `,
            /* the read at 35000 acknowledges the interrupt */
            Checks: []StatusCheck{
                StatusCheck{Cycle: 20000, Mask: 0x40, Expect: 0x00},
                StatusCheck{Cycle: 35000, Mask: 0x40, Expect: 0x40},
                StatusCheck{Cycle: 35001, Mask: 0x40, Expect: 0x00},
            },
        },
        APUTest{
            Name: "irq_inhibit",
            Script: `
                0 $4017 $40
            `,
            Checks: []StatusCheck{
                StatusCheck{Cycle: 35000, Mask: 0x40, Expect: 0x00},
            },
        },
        APUTest{
            Name: "irq_inhibit_clears",
            Script: `
                0 $4017 $00
                31000 $4017 $40
            `,
            Checks: []StatusCheck{
                StatusCheck{Cycle: 31001, Mask: 0x40, Expect: 0x00},
            },
        },
        APUTest{
            Name: "mode1_no_irq",
            Script: `
                0 $4017 $80
            `,
            Checks: []StatusCheck{
                StatusCheck{Cycle: 80000, Mask: 0x40, Expect: 0x00},
            },
        },
    }

    if debug {
        lib.ApuDebug = 1
        defer func(){
            lib.ApuDebug = 0
        }()
    }

    allPassed := true
    for _, apuTest := range tests {
        passed, err := doTest(apuTest)
        if err != nil {
            return false, fmt.Errorf("%v: %w", apuTest.Name, err)
        }
        if passed {
            log.Print(test_utils.Success(apuTest.Name))
        } else {
            log.Print(test_utils.Failure(apuTest.Name))
            allPassed = false
        }
    }

    return allPassed, nil
}
