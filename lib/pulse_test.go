package lib

import (
    "testing"
)

func TestPulseDuty(test *testing.T){
    pulse := MakePulse("pulse1", true)
    pulse.SetEnabled(true)
    pulse.WriteControl(0x80)
    pulse.WriteTimerLow(1)
    pulse.WriteTimerHigh(0)

    if pulse.Duty != 2 {
        test.Fatalf("expected duty 2 but got %v", pulse.Duty)
    }

    expected := []byte{1, 1, 1, 1, 0, 0, 0, 0}
    var outputs []byte
    for len(outputs) < len(expected) {
        step := pulse.Sequencer.Step
        pulse.Tick()
        if pulse.Sequencer.Step != step {
            outputs = append(outputs, pulse.SequencerOutput())
        }
    }

    for i := range expected {
        if outputs[i] != expected[i] {
            test.Fatalf("duty output %v: expected %v but got %v (%v)", i, expected[i], outputs[i], outputs)
        }
    }

    if pulse.Sequencer.Step != 0 {
        test.Fatalf("sequencer should have wrapped to step 0, step is %v", pulse.Sequencer.Step)
    }
}

func TestPulseLength(test *testing.T){
    pulse := MakePulse("pulse2", false)

    pulse.WriteTimerHigh(0x08)
    if pulse.Length.Counter != 0 {
        test.Fatalf("length loaded while disabled")
    }

    pulse.SetEnabled(true)
    pulse.WriteTimerHigh(0x08)
    if pulse.Length.Counter != 254 {
        test.Fatalf("expected length 254 but got %v", pulse.Length.Counter)
    }
    if !pulse.Envelope.Restart {
        test.Fatalf("timer high write should restart the envelope")
    }

    pulse.SetEnabled(false)
    if pulse.Length.Counter != 0 {
        test.Fatalf("disabling should clear the length counter")
    }
}

func TestPulseSample(test *testing.T){
    pulse := MakePulse("pulse1", true)
    pulse.SetEnabled(true)
    /* duty 3, constant volume 9 */
    pulse.WriteControl(0xd9)
    pulse.WriteTimerLow(0x40)
    pulse.WriteTimerHigh(0x08)

    /* duty 3 is high on step 0 */
    if pulse.Sample() != 9 {
        test.Fatalf("expected level 9 but got %v", pulse.Sample())
    }

    pulse.WriteTimerLow(0x04)
    if pulse.Sample() != 0 {
        test.Fatalf("period below 8 should mute the channel")
    }
}

func TestSweepTarget(test *testing.T){
    ones := Sweep{OnesComplement: true}
    ones.Set(0x89)
    if ones.TargetPeriod(0x100) != 0x7f {
        test.Fatalf("ones' complement target should be 0x7f but was 0x%x", ones.TargetPeriod(0x100))
    }

    twos := Sweep{}
    twos.Set(0x89)
    if twos.TargetPeriod(0x100) != 0x80 {
        test.Fatalf("twos' complement target should be 0x80 but was 0x%x", twos.TargetPeriod(0x100))
    }

    var add Sweep
    add.Set(0x81)
    if !add.Muted(0x600) {
        test.Fatalf("target 0x900 should mute")
    }
    if add.Muted(0x400) {
        test.Fatalf("target 0x600 should not mute")
    }
}

func TestSweepTick(test *testing.T){
    var sequencer Sequencer
    sequencer.SetReload(0x100)

    var sweep Sweep
    sweep.Set(0x81)

    sweep.Tick(&sequencer)
    if sequencer.Period() != 0x180 {
        test.Fatalf("expected period 0x180 but got 0x%x", sequencer.Period())
    }

    sweep.Tick(&sequencer)
    if sequencer.Period() != 0x240 {
        test.Fatalf("expected period 0x240 but got 0x%x", sequencer.Period())
    }

    /* a 0x900 target is out of range so the period stops changing */
    sequencer.SetReload(0x600)
    sweep.Tick(&sequencer)
    if sequencer.Period() != 0x600 {
        test.Fatalf("muted sweep changed the period to 0x%x", sequencer.Period())
    }
}
