package player

import (
    "bytes"
    "errors"
    "testing"

    "github.com/beevik/go6502/cpu"
    "github.com/kazzmir/nes-apu/lib"
)

/* the bus is handed to go6502 as its memory */
var _ cpu.Memory = &Bus{}

/* INIT enables pulse 1 with a constant volume tone, PLAY counts its calls in $00 */
func makeTestNSF() []byte {
    header := make([]byte, nsfHeaderSize)
    copy(header, []byte{'N', 'E', 'S', 'M', 0x1a})
    header[0x5] = 1
    header[0x6] = 2
    header[0x7] = 1
    /* load and init at $8000, play at $8020 */
    header[0x8] = 0x00
    header[0x9] = 0x80
    header[0xa] = 0x00
    header[0xb] = 0x80
    header[0xc] = 0x20
    header[0xd] = 0x80
    copy(header[0xe:], "test song")
    copy(header[0x2e:], "someone")
    copy(header[0x4e:], "2024")
    /* 16639 microseconds */
    header[0x6e] = 0xff
    header[0x6f] = 0x40

    program := make([]byte, 0x23)
    copy(program, []byte{
        0xa9, 0x0f, // lda #$0f
        0x8d, 0x15, 0x40, // sta $4015
        0xa9, 0xbf, // lda #$bf
        0x8d, 0x00, 0x40, // sta $4000
        0xa9, 0xfd, // lda #$fd
        0x8d, 0x02, 0x40, // sta $4002
        0xa9, 0x08, // lda #$08
        0x8d, 0x03, 0x40, // sta $4003
        0x60, // rts
    })
    copy(program[0x20:], []byte{
        0xe6, 0x00, // inc $00
        0x60, // rts
    })

    return append(header, program...)
}

func TestParseNSF(test *testing.T){
    nsf, err := ParseNSF(bytes.NewReader(makeTestNSF()))
    if err != nil {
        test.Fatalf("could not parse nsf: %v", err)
    }

    if nsf.LoadAddress != 0x8000 || nsf.InitAddress != 0x8000 || nsf.PlayAddress != 0x8020 {
        test.Fatalf("bad addresses load=0x%x init=0x%x play=0x%x", nsf.LoadAddress, nsf.InitAddress, nsf.PlayAddress)
    }
    if nsf.TotalSongs != 2 || nsf.StartingSong != 1 {
        test.Fatalf("bad song count %v start %v", nsf.TotalSongs, nsf.StartingSong)
    }
    if nsf.NTSCSpeed != 16639 {
        test.Fatalf("expected ntsc speed 16639 but got %v", nsf.NTSCSpeed)
    }
    if nsf.SongName != "test song" || nsf.Artist != "someone" || nsf.Copyright != "2024" {
        test.Fatalf("bad strings '%v' '%v' '%v'", nsf.SongName, nsf.Artist, nsf.Copyright)
    }
    if len(nsf.Data) != 0x23 {
        test.Fatalf("expected 0x23 bytes of data but got 0x%x", len(nsf.Data))
    }
    if nsf.UseBankSwitch() {
        test.Fatalf("no bank values were set")
    }
    if nsf.Region() != lib.RegionNTSC {
        test.Fatalf("expected an ntsc tune")
    }

    period := nsf.PlayPeriod(lib.NTSCTiming)
    if period < 29779 || period > 29781 {
        test.Fatalf("expected a play period near 29780 cycles but got %v", period)
    }
}

func TestParseNotNSF(test *testing.T){
    data := make([]byte, nsfHeaderSize)
    copy(data, "NESM")
    _, err := ParseNSF(bytes.NewReader(data))
    if !errors.Is(err, ErrNotNSF) {
        test.Fatalf("expected ErrNotNSF but got %v", err)
    }

    _, err = ParseNSF(bytes.NewReader([]byte("NESM")))
    if err == nil {
        test.Fatalf("short header should fail")
    }
}

func TestNSFPlayer(test *testing.T){
    nsf, err := ParseNSF(bytes.NewReader(makeTestNSF()))
    if err != nil {
        test.Fatalf("could not parse nsf: %v", err)
    }

    player := MakeNSFPlayer(nsf, lib.RegionNTSC, 44100)
    err = player.Start(0)
    if err != nil {
        test.Fatalf("init failed: %v", err)
    }

    pulse := &player.APU.Pulse1
    if !pulse.Enabled || pulse.Duty != 2 || !pulse.ConstantVolume || pulse.Envelope.Volume != 0xf {
        test.Fatalf("pulse control not written: %+v", pulse)
    }
    if pulse.Sequencer.Period() != 0xfd || pulse.Length.Counter != 254 {
        test.Fatalf("pulse timer not written: period=0x%x length=%v", pulse.Sequencer.Period(), pulse.Length.Counter)
    }

    samples, err := player.Render(4410)
    if err != nil {
        test.Fatalf("render failed: %v", err)
    }
    if len(samples) != 4410 {
        test.Fatalf("expected 4410 samples but got %v", len(samples))
    }

    loud := 0
    for _, sample := range samples {
        if sample > 0 {
            loud += 1
        }
    }
    if loud == 0 {
        test.Fatalf("pulse tone produced only silence")
    }

    /* 0.1 seconds at a 16639us play period */
    calls := player.Bus.RAM[0]
    if calls < 5 || calls > 8 {
        test.Fatalf("expected about 6 play calls but got %v", calls)
    }

    player.Paused = true
    silent, _ := player.Render(10)
    for _, sample := range silent {
        if sample != 0 {
            test.Fatalf("paused player made sound")
        }
    }
}

func TestNSFPlayerStuck(test *testing.T){
    data := makeTestNSF()
    /* init is now jmp $8000 */
    data[nsfHeaderSize + 0] = 0x4c
    data[nsfHeaderSize + 1] = 0x00
    data[nsfHeaderSize + 2] = 0x80

    nsf, err := ParseNSF(bytes.NewReader(data))
    if err != nil {
        test.Fatalf("could not parse nsf: %v", err)
    }

    player := MakeNSFPlayer(nsf, lib.RegionNTSC, 44100)
    err = player.Start(0)
    if !errors.Is(err, MaxCyclesReached) {
        test.Fatalf("expected MaxCyclesReached but got %v", err)
    }
}

func TestBusMemoryMap(test *testing.T){
    apu := lib.MakeAPU(lib.RegionNTSC)
    data := make([]byte, 0x3000)
    for i := range data {
        data[i] = byte(i >> 12) + 1
    }

    bus := MakeBus(apu, data, 0x8000)

    bus.StoreByte(0x0001, 5)
    if bus.LoadByte(0x0801) != 5 || bus.LoadByte(0x1801) != 5 {
        test.Fatalf("ram should be mirrored every 2k")
    }

    bus.StoreByte(0x6010, 9)
    if bus.LoadByte(0x6010) != 9 {
        test.Fatalf("work ram not writable")
    }

    if bus.LoadByte(0x9000) != 2 {
        test.Fatalf("flat data should map $9000 to offset $1000, got %v", bus.LoadByte(0x9000))
    }

    bus.StoreByte(0x5ff8, 2)
    if !bus.UseBankSwitch || bus.LoadByte(0x8000) != 3 {
        test.Fatalf("bank 0 should now map page 2, got %v", bus.LoadByte(0x8000))
    }
    if bus.LoadByte(0xa000) != 1 {
        test.Fatalf("bank 2 still maps page 0, got %v", bus.LoadByte(0xa000))
    }

    bus.StoreAddress(0x00ff, 0x1234)
    if bus.LoadAddress(0x00ff) != 0x1234 || bus.LoadByte(0x0000) != 0x12 {
        test.Fatalf("address should wrap within the page")
    }
}

func TestBusLoadOffset(test *testing.T){
    apu := lib.MakeAPU(lib.RegionNTSC)
    bus := MakeBus(apu, []byte{0xa9, 0x0f, 0x60}, 0xc000)

    if bus.LoadAddr != 0xc000 {
        test.Fatalf("load address not kept: 0x%x", bus.LoadAddr)
    }
    if bus.LoadByte(0xc000) != 0xa9 || bus.LoadByte(0xc002) != 0x60 {
        test.Fatalf("data should start at the load address")
    }
    if bus.LoadByte(0xbfff) != 0 || bus.LoadByte(0xc003) != 0 {
        test.Fatalf("addresses outside the data should read 0")
    }
    if bus.LoadAddress(0xc000) != 0x0fa9 {
        test.Fatalf("expected 0x0fa9 but got 0x%x", bus.LoadAddress(0xc000))
    }
}

func TestBusDefersApuWrites(test *testing.T){
    apu := lib.MakeAPU(lib.RegionNTSC)
    bus := MakeBus(apu, nil, 0x8000)

    bus.StoreByte(lib.APUChannelEnable, 0x01)
    bus.StoreByte(lib.APUPulse1Length, 0x08)
    if apu.Pulse1.Enabled || bus.Pending() != 2 {
        test.Fatalf("apu writes should wait for Flush")
    }

    bus.Flush()
    if !apu.Pulse1.Enabled || bus.Pending() != 0 {
        test.Fatalf("flush should apply the writes")
    }

    if bus.LoadByte(lib.APUStatus) != 0x01 {
        test.Fatalf("status read should report pulse 1")
    }
}
