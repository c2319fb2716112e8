package main

import (
    "context"
    "errors"
    "fmt"
    "io"
    "log"
    "os"
    "strings"
    "time"

    "github.com/kazzmir/nes-apu/cmd/common"
    "github.com/kazzmir/nes-apu/lib"
    "github.com/kazzmir/nes-apu/util/thread"

    "github.com/fatih/color"
    "github.com/jroimartin/gocui"
)

/* how many frame events the event view remembers */
const MaxEvents = 200

type Debugger struct {
    APU *lib.APUState
    StatePath string
    Events []string
    Message string
    /* set by the frame listener, used to stop RunToEvent */
    sawEvent bool
    running *thread.ThreadGroup
    group *thread.ThreadGroup
}

func MakeDebugger(region lib.Region, statePath string, group *thread.ThreadGroup) *Debugger {
    debugger := &Debugger{
        APU: lib.MakeAPU(region),
        StatePath: statePath,
        group: group,
    }
    debugger.APU.Listener = debugger.onFrame
    return debugger
}

func (debugger *Debugger) onFrame(event lib.FrameEvent, cycle uint64){
    debugger.sawEvent = true
    line := fmt.Sprintf("%8v %-7v %v step %v", cycle, event, debugger.APU.State.Mode, debugger.APU.State.Step)
    debugger.Events = append(debugger.Events, line)
    if len(debugger.Events) > MaxEvents {
        debugger.Events = debugger.Events[len(debugger.Events) - MaxEvents:]
    }
}

func (debugger *Debugger) Step(cycles uint64){
    debugger.APU.Run(cycles)
}

/* tick until the frame sequencer produces a quarter or half frame */
func (debugger *Debugger) RunToEvent(){
    debugger.sawEvent = false
    limit := debugger.APU.Timing.Wrap(lib.FrameMode1) * 2
    for i := uint64(0); i < limit && !debugger.sawEvent; i++ {
        debugger.APU.Tick()
    }
}

func (debugger *Debugger) Write4017(value byte){
    debugger.APU.Write4017(value)
    debugger.Message = fmt.Sprintf("wrote $4017 = $%02x on cycle %v", value, debugger.APU.Cycles)
}

func (debugger *Debugger) Save() error {
    file, err := os.Create(debugger.StatePath)
    if err != nil {
        return err
    }
    defer file.Close()

    err = debugger.APU.SaveState(file)
    if err != nil {
        return err
    }
    debugger.Message = fmt.Sprintf("saved cycle %v to %v", debugger.APU.Cycles, debugger.StatePath)
    return nil
}

func (debugger *Debugger) Load() error {
    file, err := os.Open(debugger.StatePath)
    if err != nil {
        return err
    }
    defer file.Close()

    err = debugger.APU.LoadState(file)
    if err != nil {
        return err
    }
    debugger.Message = fmt.Sprintf("loaded cycle %v from %v", debugger.APU.Cycles, debugger.StatePath)
    return nil
}

/* toggle free running, one event every 100ms */
func (debugger *Debugger) ToggleRun(gui *gocui.Gui){
    if debugger.running != nil {
        debugger.running.Cancel()
        debugger.running = nil
        debugger.Message = "stopped"
        return
    }

    debugger.running = debugger.group.SubGroup()
    debugger.Message = "running"
    debugger.running.SpawnWithCancel(func(quit context.Context, cancel context.CancelFunc){
        ticker := time.NewTicker(100 * time.Millisecond)
        defer ticker.Stop()
        for {
            select {
                case <-quit.Done():
                    return
                case <-ticker.C:
                    /* the gui owns the apu, so the work runs on its loop */
                    gui.Update(func(gui *gocui.Gui) error {
                        if quit.Err() == nil {
                            debugger.RunToEvent()
                        }
                        return nil
                    })
            }
        }
    })
}

var highlight = color.New(color.FgYellow, color.Bold).SprintFunc()
var dim = color.New(color.FgHiBlack).SprintFunc()

func yesNo(value bool) string {
    if value {
        return highlight("yes")
    }
    return "no"
}

func (debugger *Debugger) frameText() string {
    apu := debugger.APU
    var out strings.Builder

    fmt.Fprintf(&out, "Region     %v\n", apu.Timing.Region)
    fmt.Fprintf(&out, "Cycle      %v (%v)\n", apu.Cycles, map[bool]string{true: "even", false: "odd"}[apu.IsEvenCycle()])
    fmt.Fprintf(&out, "Sequence   %v / %v\n", apu.StepCycles, apu.Timing.Wrap(apu.State.Mode))
    fmt.Fprintf(&out, "Mode       %v\n", apu.State.Mode)
    fmt.Fprintf(&out, "Step       %v of %v", apu.State.Step, apu.Timing.Steps(apu.State.Mode))
    if apu.State.Step < apu.Timing.Steps(apu.State.Mode) {
        fmt.Fprintf(&out, ", next at %v", apu.Timing.Boundary(apu.State.Mode, apu.State.Step))
    }
    fmt.Fprintf(&out, "\n")
    fmt.Fprintf(&out, "Next half  %v\n", map[bool]string{true: "even", false: "odd"}[apu.State.Even])
    fmt.Fprintf(&out, "Switching  %v\n", yesNo(apu.ModeSwitch))
    fmt.Fprintf(&out, "Inhibit    %v\n", yesNo(apu.InterruptInhibit))
    fmt.Fprintf(&out, "IRQ        %v\n", yesNo(apu.FrameIRQAsserted))
    fmt.Fprintf(&out, "Quarters   %v\n", apu.QuarterFrames)
    fmt.Fprintf(&out, "Halves     %v\n", apu.HalfFrames)
    /* reading $4015 acknowledges the interrupt, so peek at a copy */
    fmt.Fprintf(&out, "Status     $%02x\n", apu.Copy().ReadStatus())

    return out.String()
}

func (debugger *Debugger) delayText() string {
    register := &debugger.APU.FrameRegister
    var out strings.Builder

    for i, slot := range register.Slots {
        name := fmt.Sprintf("slot %v", i)
        if i == register.Delay {
            name = "resolved"
        }
        if slot.Written {
            fmt.Fprintf(&out, "%-9v %v\n", name, highlight(fmt.Sprintf("$%02x", slot.Value)))
        } else {
            fmt.Fprintf(&out, "%-9v %v\n", name, dim(fmt.Sprintf("$%02x", slot.Value)))
        }
    }
    fmt.Fprintf(&out, "recent    $%02x\n", register.MostRecentValue())
    fmt.Fprintf(&out, "pending   %v\n", yesNo(register.Pending()))

    return out.String()
}

func pulseText(out *strings.Builder, pulse *lib.Pulse){
    fmt.Fprintf(out, "%v: enabled=%v duty=%v step=%v timer=%v/%v\n", pulse.Name, yesNo(pulse.Enabled), pulse.Duty, pulse.Sequencer.Step, pulse.Sequencer.Timer, pulse.Sequencer.Period())
    fmt.Fprintf(out, "  length=%v halt=%v volume=%v decay=%v sweep=%v muted=%v out=%v\n", pulse.Length.Counter, yesNo(pulse.Halt), pulse.Envelope.Volume, pulse.Envelope.DecayCounter, yesNo(pulse.Sweep.Enabled), yesNo(pulse.Sweep.Muted(pulse.Sequencer.Period())), pulse.Sample())
}

func (debugger *Debugger) unitText() string {
    apu := debugger.APU
    var out strings.Builder

    pulseText(&out, &apu.Pulse1)
    pulseText(&out, &apu.Pulse2)

    triangle := &apu.Triangle
    fmt.Fprintf(&out, "triangle: enabled=%v step=%v timer=%v/%v\n", yesNo(triangle.Enabled), triangle.Sequencer.Step, triangle.Sequencer.Timer, triangle.Sequencer.Period())
    fmt.Fprintf(&out, "  length=%v linear=%v reload=%v control=%v out=%v\n", triangle.Length.Counter, triangle.LinearCounter, triangle.LinearCounterReload, yesNo(triangle.ControlFlag), triangle.Sample())

    noise := &apu.Noise
    fmt.Fprintf(&out, "noise: enabled=%v mode=%v shift=$%04x timer=%v/%v\n", yesNo(noise.Enabled), map[bool]int{false: 0, true: 1}[noise.Mode], noise.ShiftRegister, noise.Sequencer.Timer, noise.Sequencer.Period())
    fmt.Fprintf(&out, "  length=%v halt=%v volume=%v decay=%v out=%v\n", noise.Length.Counter, yesNo(noise.Halt), noise.Envelope.Volume, noise.Envelope.DecayCounter, noise.Sample())

    return out.String()
}

const helpText = "s: step  S: step 100  n: next event  f: full sequence  space: run\n" +
                 "0: $4017=$00  1: $4017=$80  i: $4017=$40  r: read $4015  a: analog reset  k: known reset\n" +
                 "w: save state  l: load state  q: quit"

/* replace the contents of a view, creating it the first time */
func showView(gui *gocui.Gui, name string, title string, x0, y0, x1, y1 int, text string) error {
    view, err := gui.SetView(name, x0, y0, x1, y1)
    if err != nil && !errors.Is(err, gocui.ErrUnknownView) {
        return err
    }
    view.Title = title
    view.Wrap = true
    view.Clear()
    fmt.Fprint(view, text)
    return nil
}

func (debugger *Debugger) Layout(gui *gocui.Gui) error {
    width, height := gui.Size()
    left := width / 2
    if left < 40 {
        left = 40
    }

    err := showView(gui, "frame", "Frame sequencer", 0, 0, left - 1, 14, debugger.frameText())
    if err != nil {
        return err
    }

    err = showView(gui, "delay", "$4017 delay line", left, 0, width - 1, 8, debugger.delayText())
    if err != nil {
        return err
    }

    /* newest event first */
    var events strings.Builder
    for i := len(debugger.Events) - 1; i >= 0; i-- {
        fmt.Fprintln(&events, debugger.Events[i])
    }
    err = showView(gui, "events", "Frame events", left, 9, width - 1, 14, events.String())
    if err != nil {
        return err
    }

    bottom := height - 6
    if bottom < 24 {
        bottom = 24
    }
    err = showView(gui, "units", "Units", 0, 15, width - 1, bottom, debugger.unitText())
    if err != nil {
        return err
    }

    return showView(gui, "help", debugger.Message, 0, bottom + 1, width - 1, bottom + 5, helpText)
}

func (debugger *Debugger) bind(gui *gocui.Gui) error {
    simple := func(action func()) func(*gocui.Gui, *gocui.View) error {
        return func(gui *gocui.Gui, view *gocui.View) error {
            action()
            return nil
        }
    }

    reportError := func(action func() error) func(*gocui.Gui, *gocui.View) error {
        return func(gui *gocui.Gui, view *gocui.View) error {
            err := action()
            if err != nil {
                debugger.Message = fmt.Sprintf("error: %v", err)
            }
            return nil
        }
    }

    quit := func(gui *gocui.Gui, view *gocui.View) error {
        return gocui.ErrQuit
    }

    bindings := []struct {
        Key any
        Handler func(*gocui.Gui, *gocui.View) error
    }{
        {'s', simple(func(){ debugger.Step(1) })},
        {'S', simple(func(){ debugger.Step(100) })},
        {'n', simple(debugger.RunToEvent)},
        {'f', simple(func(){ debugger.Step(debugger.APU.Timing.Wrap(debugger.APU.State.Mode)) })},
        {gocui.KeySpace, simple(func(){ debugger.ToggleRun(gui) })},
        {'0', simple(func(){ debugger.Write4017(0x00) })},
        {'1', simple(func(){ debugger.Write4017(0x80) })},
        {'i', simple(func(){ debugger.Write4017(0x40) })},
        {'r', simple(func(){
            debugger.Message = fmt.Sprintf("read $4015 = $%02x on cycle %v", debugger.APU.ReadStatus(), debugger.APU.Cycles)
        })},
        {'a', simple(func(){
            debugger.APU.ResetAnalog()
            debugger.Message = "analog reset"
        })},
        {'k', simple(func(){
            debugger.APU.ResetToKnown()
            debugger.Events = nil
            debugger.Message = "reset to known state"
        })},
        {'w', reportError(debugger.Save)},
        {'l', reportError(debugger.Load)},
        {'q', quit},
        {gocui.KeyCtrlC, quit},
    }

    for _, binding := range bindings {
        err := gui.SetKeybinding("", binding.Key, gocui.ModNone, binding.Handler)
        if err != nil {
            return err
        }
    }

    return nil
}

func run(region lib.Region, statePath string) error {
    gui, err := gocui.NewGui(gocui.OutputNormal)
    if err != nil {
        return err
    }
    defer gui.Close()

    group := thread.NewThreadGroup(context.Background())
    defer group.Wait()
    defer group.Cancel()

    debugger := MakeDebugger(region, statePath, group)
    debugger.Message = fmt.Sprintf("%v apu at power on", region)

    gui.SetManagerFunc(debugger.Layout)
    err = debugger.bind(gui)
    if err != nil {
        return err
    }

    err = gui.MainLoop()
    if err != nil && !errors.Is(err, gocui.ErrQuit) {
        return err
    }

    return nil
}

func help(){
    fmt.Printf("apu-debug [-pal | -ntsc] [-state <file>]\n")
}

func main(){
    log.SetFlags(log.Lshortfile | log.Lmicroseconds)

    config, err := common.LoadConfigData()
    if err != nil && !os.IsNotExist(err) {
        log.Printf("Could not load config, using defaults: %v", err)
    }

    region := config.GetRegion()
    statePath := "apu.state"

    args := os.Args[1:]
    for argIndex := 0; argIndex < len(args); argIndex++ {
        switch args[argIndex] {
            case "-pal", "--pal":
                region = lib.RegionPAL
            case "-ntsc", "--ntsc":
                region = lib.RegionNTSC
            case "-state", "--state":
                argIndex += 1
                if argIndex >= len(args) {
                    help()
                    os.Exit(1)
                }
                statePath = args[argIndex]
            case "-h", "-help", "--help":
                help()
                return
            default:
                log.Printf("Unknown option '%v'", args[argIndex])
                help()
                os.Exit(1)
        }
    }

    /* the log would draw over the terminal ui */
    if config.Debug == 0 {
        log.SetOutput(io.Discard)
    }

    /* gocui understands ansi colors */
    color.NoColor = false

    err = run(region, statePath)
    if err != nil {
        fmt.Fprintf(os.Stderr, "Error: %v\n", err)
        os.Exit(1)
    }
}
