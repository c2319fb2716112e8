package main

import (
    "fmt"
    "log"
    "math"
    "os"
    "strconv"

    "github.com/kazzmir/nes-apu/lib"
    "github.com/kazzmir/nes-apu/player"

    "github.com/fatih/color"
)

func showInfo(nsf *player.NSFFile){
    label := color.New(color.FgCyan).SprintFunc()

    fmt.Printf("%v %v\n", label("Song     "), nsf.SongName)
    fmt.Printf("%v %v\n", label("Artist   "), nsf.Artist)
    fmt.Printf("%v %v\n", label("Copyright"), nsf.Copyright)
    fmt.Printf("%v %v\n", label("Version  "), nsf.Version)
    fmt.Printf("%v %v (starting at %v)\n", label("Songs    "), nsf.TotalSongs, nsf.StartingSong)
    fmt.Printf("%v load 0x%x init 0x%x play 0x%x\n", label("Addresses"), nsf.LoadAddress, nsf.InitAddress, nsf.PlayAddress)
    fmt.Printf("%v ntsc %vus pal %vus\n", label("Speed    "), nsf.NTSCSpeed, nsf.PALSpeed)
    fmt.Printf("%v %v (0x%x)\n", label("Region   "), nsf.Region(), nsf.PALMode)
    if nsf.UseBankSwitch() {
        fmt.Printf("%v %v\n", label("Banks    "), nsf.InitialBanks)
    }
    if nsf.ExtraSoundChip != 0 {
        fmt.Printf("%v 0x%x, only the 2A03 channels will play\n", label("Expansion"), nsf.ExtraSoundChip)
    }
    fmt.Printf("%v %v bytes\n", label("Data     "), len(nsf.Data))
}

type TraceResult struct {
    Quarter int
    Half int
    Peak float32
    RMS float64
}

/* run a track for the given time and summarize what the frame sequencer and mixer did */
func trace(nsf *player.NSFFile, track int, seconds float64) (TraceResult, error) {
    var result TraceResult

    nsfPlayer := player.MakeNSFPlayer(*nsf, nsf.Region(), 44100)
    nsfPlayer.APU.Listener = func(event lib.FrameEvent, cycle uint64){
        switch event {
            case lib.FrameEventQuarter:
                result.Quarter += 1
            case lib.FrameEventHalf:
                result.Half += 1
        }
    }

    err := nsfPlayer.Start(byte(track))
    if err != nil {
        return result, err
    }

    total := int(seconds * 44100)
    samples, err := nsfPlayer.Render(total)
    if err != nil {
        return result, err
    }

    var sum float64
    for _, sample := range samples {
        if sample > result.Peak {
            result.Peak = sample
        }
        sum += float64(sample) * float64(sample)
    }
    if len(samples) > 0 {
        result.RMS = math.Sqrt(sum / float64(len(samples)))
    }

    log.Printf("Track %v ran %v cycles, frame mode %v", track + 1, nsfPlayer.APU.Cycles, nsfPlayer.APU.State.Mode)

    return result, nil
}

func run(path string, seconds float64) error {
    nsf, err := player.LoadNSF(path)
    if err != nil {
        return err
    }

    showInfo(&nsf)

    if seconds <= 0 {
        return nil
    }

    quiet := color.New(color.FgYellow).SprintFunc()
    for track := 0; track < int(nsf.TotalSongs); track++ {
        result, err := trace(&nsf, track, seconds)
        if err != nil {
            fmt.Printf("track %v: %v\n", track + 1, color.RedString("%v", err))
            continue
        }

        level := fmt.Sprintf("peak %.3f rms %.3f", result.Peak, result.RMS)
        if result.Peak == 0 {
            level = quiet("silent")
        }
        fmt.Printf("track %v: %v quarter %v half frames, %v\n", track + 1, result.Quarter, result.Half, level)
    }

    return nil
}

func main(){
    log.SetFlags(log.Lshortfile | log.Lmicroseconds | log.Ldate)

    if len(os.Args) == 1 {
        fmt.Printf("nsf <file.nsf> [seconds to trace each track]\n")
        return
    }

    seconds := 0.0
    if len(os.Args) > 2 {
        value, err := strconv.ParseFloat(os.Args[2], 64)
        if err != nil {
            log.Printf("Error: invalid duration '%v'", os.Args[2])
            os.Exit(1)
        }
        seconds = value
    }

    err := run(os.Args[1], seconds)
    if err != nil {
        log.Printf("Error: %v", err)
        os.Exit(1)
    }
}
