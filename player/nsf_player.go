package player

import (
    "errors"
    "fmt"
    "log"

    "github.com/beevik/go6502/cpu"
    "github.com/kazzmir/nes-apu/lib"
)

var MaxCyclesReached error = errors.New("maximum cycles reached")

/* about a second of cpu time, INIT or PLAY taking longer than this is stuck */
const MaxRoutineCycles = 2000000

/* Runs an NSF tune on a 6502 and the apu.
 *
 * 1. set up bank switching registers (if necessary)
 * 2. invoke INIT routine with the track in A and the region in X
 * 3. invoke PLAY every play period, the cpu idles in between
 *
 * The apu is ticked once for every cpu cycle, idle cycles included.
 */
type NSFPlayer struct {
    NSF NSFFile
    APU *lib.APUState
    Bus *Bus
    CPU *cpu.CPU
    Sampler *Sampler
    /* 0 based */
    Track byte
    Paused bool
    /* cpu cycles between play calls */
    PlayPeriod float64

    playCounter float64
    samples []float32
}

func MakeNSFPlayer(nsf NSFFile, region lib.Region, sampleRate float64) *NSFPlayer {
    apu := lib.MakeAPU(region)
    bus := MakeBus(apu, nsf.Data, nsf.LoadAddress)

    return &NSFPlayer{
        NSF: nsf,
        APU: apu,
        Bus: bus,
        CPU: cpu.NewCPU(cpu.NMOS, bus),
        Sampler: MakeSampler(apu.Timing, sampleRate),
        PlayPeriod: nsf.PlayPeriod(apu.Timing),
    }
}

func (player *NSFPlayer) Start(track byte) error {
    player.APU.ResetToKnown()

    player.Bus.RAM = [0x800]byte{}
    player.Bus.WorkRAM = [0x2000]byte{}
    player.Bus.pending = nil
    player.Bus.UseBankSwitch = false
    player.Bus.Banks = [8]byte{}
    if player.NSF.UseBankSwitch() {
        player.Bus.SetBanks(player.NSF.InitialBanks)
    }

    player.Track = track
    player.Paused = false
    player.playCounter = 0
    player.Sampler.Reset()

    /* enable all channels, 4-step frame sequence without interrupts */
    player.APU.WriteRegister(lib.APUChannelEnable, 0x0f)
    player.APU.WriteRegister(lib.APUFrameCounter, 0x40)

    var region byte = 0
    if player.APU.Timing.Region == lib.RegionPAL {
        region = 1
    }

    if lib.ApuDebug > 0 {
        log.Printf("NSF: starting track %v/%v, play period %.2f cycles", track + 1, player.NSF.TotalSongs, player.PlayPeriod)
    }

    err := player.runRoutine(player.NSF.InitAddress, track, region)
    player.samples = nil
    return err
}

/* tick the apu for one cpu cycle and collect a host sample if one is due */
func (player *NSFPlayer) tick(){
    player.APU.Tick()
    sample, ok := player.Sampler.Tick(player.APU)
    if ok {
        player.samples = append(player.samples, sample)
    }
}

func (player *NSFPlayer) step(){
    before := player.CPU.Cycles
    player.CPU.Step()
    used := player.CPU.Cycles - before

    for i := uint64(0); i < used; i++ {
        player.tick()
    }

    player.Bus.Flush()
}

/* Run a routine until its final rts. Nothing is pushed on the stack, so the
 * rts that returns to the caller is the one executed with SP at $FF.
 */
func (player *NSFPlayer) runRoutine(address uint16, a byte, x byte) error {
    processor := player.CPU
    processor.SetPC(address)
    processor.Reg.A = a
    processor.Reg.X = x
    processor.Reg.Y = 0
    processor.Reg.SP = 0xff

    start := processor.Cycles

    for {
        opcode := player.Bus.LoadByte(processor.Reg.PC)
        if (opcode == 0x60 || opcode == 0x40) && processor.Reg.SP == 0xff {
            return nil
        }

        if processor.Cycles - start > MaxRoutineCycles {
            return fmt.Errorf("routine at 0x%x: %w", address, MaxCyclesReached)
        }

        player.step()
    }
}

/* produce exactly count samples at the sampler's rate */
func (player *NSFPlayer) Render(count int) ([]float32, error) {
    if player.Paused {
        return make([]float32, count), nil
    }

    for len(player.samples) < count {
        if player.playCounter <= 0 {
            player.playCounter += player.PlayPeriod
            before := player.CPU.Cycles
            err := player.runRoutine(player.NSF.PlayAddress, 0, 0)
            if err != nil {
                return nil, err
            }
            player.playCounter -= float64(player.CPU.Cycles - before)
        } else {
            player.tick()
            player.playCounter -= 1
        }
    }

    out := make([]float32, count)
    copy(out, player.samples)
    player.samples = append(player.samples[:0], player.samples[count:]...)

    return out, nil
}
