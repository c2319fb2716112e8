package lib

import (
    "testing"
)

func TestNoiseShiftRegister(test *testing.T){
    noise := MakeNoise(NTSCTiming)

    expected := []uint16{0x4000, 0x2000, 0x1000, 0x0800, 0x0400}
    for i, value := range expected {
        output := noise.Advance(&noise.Sequencer)
        if noise.ShiftRegister != value {
            test.Fatalf("step %v: expected shift register 0x%x but got 0x%x", i + 1, value, noise.ShiftRegister)
        }
        if output != 1 {
            test.Fatalf("step %v: expected output 1 but got %v", i + 1, output)
        }
    }

    for i := len(expected); i < 14; i++ {
        noise.Advance(&noise.Sequencer)
    }

    if noise.ShiftRegister != 0x0002 {
        test.Fatalf("expected 0x2 after 14 steps but got 0x%x", noise.ShiftRegister)
    }

    /* bit 1 feeds back for the first time */
    output := noise.Advance(&noise.Sequencer)
    if noise.ShiftRegister != 0x4001 || output != 0 {
        test.Fatalf("step 15: shift register 0x%x output %v", noise.ShiftRegister, output)
    }

    output = noise.Advance(&noise.Sequencer)
    if noise.ShiftRegister != 0x6000 || output != 1 {
        test.Fatalf("step 16: shift register 0x%x output %v", noise.ShiftRegister, output)
    }
}

func TestNoiseLongPeriod(test *testing.T){
    noise := MakeNoise(NTSCTiming)

    count := 0
    for {
        noise.Advance(&noise.Sequencer)
        count += 1
        if noise.ShiftRegister == 1 || count > 40000 {
            break
        }
    }

    if count != 32767 {
        test.Fatalf("mode 0 period should be 32767 but was %v", count)
    }
}

func TestNoiseShortPeriod(test *testing.T){
    noise := MakeNoise(NTSCTiming)
    noise.Mode = true

    /* the seed 1 sits on the 93 step loop */
    count := 0
    for {
        noise.Advance(&noise.Sequencer)
        count += 1
        if noise.ShiftRegister == 1 || count > 40000 {
            break
        }
    }

    if count != 93 {
        test.Fatalf("mode 1 period should be 93 but was %v", count)
    }
}

func TestNoiseTimer(test *testing.T){
    noise := MakeNoise(NTSCTiming)
    noise.SetEnabled(true)
    noise.WriteMode(0)

    if noise.Sequencer.Reload != 3 {
        test.Fatalf("period 4 should reload the timer with 3, got %v", noise.Sequencer.Reload)
    }

    /* first tick underflows the zeroed timer, then every 4 ticks */
    for i := 0; i < 9; i++ {
        noise.Tick()
    }

    if noise.ShiftRegister != 0x1000 {
        test.Fatalf("expected 3 shifts but shift register is 0x%x", noise.ShiftRegister)
    }

    noise.WriteMode(0x8f)
    if !noise.Mode || noise.Sequencer.Reload != 4067 {
        test.Fatalf("mode=%v reload=%v", noise.Mode, noise.Sequencer.Reload)
    }

    pal := MakeNoise(PALTiming)
    pal.WriteMode(0x0f)
    if pal.Sequencer.Reload != 3777 {
        test.Fatalf("pal period 15 should reload with 3777, got %v", pal.Sequencer.Reload)
    }
}

func TestNoiseDisabled(test *testing.T){
    noise := MakeNoise(NTSCTiming)
    noise.WriteMode(0)
    for i := 0; i < 100; i++ {
        noise.Tick()
    }

    if noise.ShiftRegister != 1 {
        test.Fatalf("disabled noise should not shift, got 0x%x", noise.ShiftRegister)
    }

    noise.WriteLength(0x08)
    if noise.Length.Counter != 0 {
        test.Fatalf("length should not load while disabled")
    }
}

func TestNoisePowerOnPeriod(test *testing.T){
    noise := MakeNoise(NTSCTiming)
    if noise.Sequencer.Reload != 3 {
        test.Fatalf("power on period index 0 should reload with 3, got %v", noise.Sequencer.Reload)
    }

    apu := MakeAPU(RegionNTSC)
    apu.Noise.Sequencer.Reload = 100
    apu.ResetToKnown()
    apu.WriteChannelEnable(0x08)

    /* no $400E write, the timer still runs at the 4 cycle period */
    apu.Run(9)
    if apu.Noise.ShiftRegister != 0x1000 {
        test.Fatalf("noise should have shifted 3 times, shift register 0x%x", apu.Noise.ShiftRegister)
    }
}
