package lib

type Region int

const (
    RegionNTSC Region = iota
    RegionPAL
)

func (region Region) String() string {
    switch region {
        case RegionNTSC: return "ntsc"
        case RegionPAL: return "pal"
    }

    return "unknown"
}

/* parse a region name, anything unknown is ntsc */
func ParseRegion(name string) Region {
    switch name {
        case "pal", "PAL", "Pal": return RegionPAL
    }
    return RegionNTSC
}

/* Frame sequencer boundaries, in cpu cycles counted from the start of the
 * sequence. The last entry of each mode is where the sequence wraps to 0.
 *   http://wiki.nesdev.org/w/index.php/APU_Frame_Counter
 */
type FrameTiming struct {
    Region Region
    Mode0 [4]uint64
    Mode1 [5]uint64
    NoisePeriods [16]uint16
    CPUSpeed float64
    /* frames per second of the host video signal */
    FrameRate float64
}

var NTSCTiming FrameTiming = FrameTiming{
    Region: RegionNTSC,
    Mode0: [4]uint64{7457, 14913, 22371, 29830},
    Mode1: [5]uint64{7457, 14913, 22371, 29829, 37282},
    NoisePeriods: [16]uint16{4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068},
    CPUSpeed: 1.789773e6,
    FrameRate: 60.0988,
}

var PALTiming FrameTiming = FrameTiming{
    Region: RegionPAL,
    Mode0: [4]uint64{8313, 16627, 24939, 33254},
    Mode1: [5]uint64{8313, 16627, 24939, 33253, 41566},
    NoisePeriods: [16]uint16{4, 8, 14, 30, 60, 88, 118, 148, 188, 236, 354, 472, 708, 944, 1890, 3778},
    CPUSpeed: 1.662607e6,
    FrameRate: 50.0070,
}

func TimingFor(region Region) FrameTiming {
    if region == RegionPAL {
        return PALTiming
    }
    return NTSCTiming
}

/* number of steps in the given frame mode */
func (timing *FrameTiming) Steps(mode FrameMode) int {
    if mode == FrameMode1 {
        return len(timing.Mode1)
    }
    return len(timing.Mode0)
}

func (timing *FrameTiming) Boundary(mode FrameMode, step int) uint64 {
    if mode == FrameMode1 {
        return timing.Mode1[step]
    }
    return timing.Mode0[step]
}

/* cycle at which the sequence returns to step 0 */
func (timing *FrameTiming) Wrap(mode FrameMode) uint64 {
    return timing.Boundary(mode, timing.Steps(mode) - 1)
}

type FrameEvent int

const (
    FrameEventNone FrameEvent = iota
    FrameEventQuarter
    /* a half frame also clocks everything a quarter frame does */
    FrameEventHalf
)

func (event FrameEvent) String() string {
    switch event {
        case FrameEventNone: return "none"
        case FrameEventQuarter: return "quarter"
        case FrameEventHalf: return "half"
    }
    return "?"
}

/* the clock generated when the given step reaches its boundary. the last
 * step of each mode clocks one cycle before its (wrap) boundary.
 */
var frameEvents = [2][5]FrameEvent{
    {FrameEventQuarter, FrameEventHalf, FrameEventQuarter, FrameEventHalf, FrameEventNone},
    {FrameEventQuarter, FrameEventHalf, FrameEventQuarter, FrameEventNone, FrameEventHalf},
}

func StepEvent(mode FrameMode, step int) FrameEvent {
    return frameEvents[mode][step]
}
