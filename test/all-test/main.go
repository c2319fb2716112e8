package main

import (
    "log"
    "os"

    aputest "github.com/kazzmir/nes-apu/test/all-test/apu-test"
    "github.com/kazzmir/nes-apu/test/all-test/delay"
    "github.com/kazzmir/nes-apu/test/all-test/frame"
    "github.com/kazzmir/nes-apu/test/all-test/lfsr"
    test_utils "github.com/kazzmir/nes-apu/test/all-test/utils"
)

type Suite struct {
    Name string
    Run func(debug bool) (bool, error)
}

func main(){
    log.SetFlags(log.Lshortfile | log.Lmicroseconds)

    debug := false
    for _, arg := range os.Args[1:] {
        if arg == "-debug" || arg == "--debug" {
            debug = true
        }
    }

    suites := []Suite{
        Suite{Name: "frame", Run: frame.Run},
        Suite{Name: "delay", Run: delay.Run},
        Suite{Name: "lfsr", Run: lfsr.Run},
        Suite{Name: "aputest", Run: aputest.Run},
    }

    failed := false
    for _, suite := range suites {
        ok, err := suite.Run(debug)
        if err != nil {
            log.Printf("Error: %v failed with an error: %v", suite.Name, err)
            failed = true
            continue
        }

        if ok {
            log.Print(test_utils.Success(suite.Name))
        } else {
            log.Print(test_utils.Failure(suite.Name))
            failed = true
        }
    }

    if failed {
        os.Exit(1)
    }
}
