package player

import (
    "bufio"
    "errors"
    "fmt"
    "io"
    "os"
    "sort"
    "strconv"
    "strings"

    "github.com/kazzmir/nes-apu/lib"
)

var ErrBadScript error = errors.New("bad script")

type ScriptWrite struct {
    Cycle uint64
    Address uint16
    Value byte
}

/* A list of apu register writes, each applied on an exact cpu cycle.
 *
 *   # comment
 *   <cycle> <address> <value>
 *
 * Numbers are decimal, 0x hex or $ hex.
 */
type Script struct {
    Writes []ScriptWrite
}

func parseNumber(field string, bits int) (uint64, error) {
    if strings.HasPrefix(field, "$") {
        return strconv.ParseUint(field[1:], 16, bits)
    }
    return strconv.ParseUint(field, 0, bits)
}

func ParseScript(reader io.Reader) (Script, error) {
    var script Script

    scanner := bufio.NewScanner(reader)
    line := 0
    for scanner.Scan() {
        line += 1
        text := scanner.Text()
        if index := strings.IndexByte(text, '#'); index != -1 {
            text = text[:index]
        }

        fields := strings.Fields(text)
        if len(fields) == 0 {
            continue
        }

        if len(fields) != 3 {
            return Script{}, fmt.Errorf("%w: line %v: expected '<cycle> <address> <value>'", ErrBadScript, line)
        }

        cycle, err := parseNumber(fields[0], 64)
        if err != nil {
            return Script{}, fmt.Errorf("%w: line %v: cycle: %v", ErrBadScript, line, err)
        }

        address, err := parseNumber(fields[1], 16)
        if err != nil {
            return Script{}, fmt.Errorf("%w: line %v: address: %v", ErrBadScript, line, err)
        }

        if address < lib.APUPulse1DutyCycle || address > lib.APUFrameCounter {
            return Script{}, fmt.Errorf("%w: line %v: 0x%x is not an apu register", ErrBadScript, line, address)
        }

        value, err := parseNumber(fields[2], 8)
        if err != nil {
            return Script{}, fmt.Errorf("%w: line %v: value: %v", ErrBadScript, line, err)
        }

        script.Writes = append(script.Writes, ScriptWrite{
            Cycle: cycle,
            Address: uint16(address),
            Value: byte(value),
        })
    }

    if err := scanner.Err(); err != nil {
        return Script{}, err
    }

    /* writes on the same cycle keep their order */
    sort.SliceStable(script.Writes, func(a int, b int) bool {
        return script.Writes[a].Cycle < script.Writes[b].Cycle
    })

    return script, nil
}

func LoadScript(path string) (Script, error) {
    file, err := os.Open(path)
    if err != nil {
        return Script{}, err
    }
    defer file.Close()

    return ParseScript(file)
}

/* cycle of the last write */
func (script *Script) Length() uint64 {
    if len(script.Writes) == 0 {
        return 0
    }
    return script.Writes[len(script.Writes) - 1].Cycle
}

/* Applies a script to an apu. A write for cycle C is made after the apu has
 * been ticked C times, so it belongs to cycle C.
 */
type ScriptPlayer struct {
    Script Script
    APU *lib.APUState
    Sampler *Sampler
    /* cycles to keep playing after the last write */
    Tail uint64

    position int
    samples []float32
}

func MakeScriptPlayer(script Script, region lib.Region, sampleRate float64) *ScriptPlayer {
    apu := lib.MakeAPU(region)
    return &ScriptPlayer{
        Script: script,
        APU: apu,
        Sampler: MakeSampler(apu.Timing, sampleRate),
        Tail: uint64(apu.Timing.CPUSpeed),
    }
}

func (player *ScriptPlayer) applyWrites(){
    for player.position < len(player.Script.Writes) {
        write := player.Script.Writes[player.position]
        if write.Cycle > player.APU.Cycles {
            return
        }
        player.APU.WriteRegister(write.Address, write.Value)
        player.position += 1
    }
}

func (player *ScriptPlayer) Done() bool {
    return player.position >= len(player.Script.Writes) && player.APU.Cycles >= player.Script.Length() + player.Tail
}

/* advance one cpu cycle */
func (player *ScriptPlayer) Step(){
    player.applyWrites()
    player.APU.Tick()
    sample, ok := player.Sampler.Tick(player.APU)
    if ok {
        player.samples = append(player.samples, sample)
    }
}

/* run until the apu has been ticked cycle times in total */
func (player *ScriptPlayer) RunTo(cycle uint64){
    for player.APU.Cycles < cycle {
        player.Step()
    }
    player.applyWrites()
}

/* returns io.EOF along with the last samples once the script has finished */
func (player *ScriptPlayer) Render(count int) ([]float32, error) {
    for len(player.samples) < count && !player.Done() {
        player.Step()
    }

    use := count
    if use > len(player.samples) {
        use = len(player.samples)
    }

    out := make([]float32, use)
    copy(out, player.samples)
    player.samples = append(player.samples[:0], player.samples[use:]...)

    if player.Done() && len(player.samples) == 0 {
        return out, io.EOF
    }

    return out, nil
}
