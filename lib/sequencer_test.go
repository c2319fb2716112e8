package lib

import (
    "testing"
)

type countingStepper struct {
    Fires int
}

func (stepper *countingStepper) ShouldTick(enabled bool) bool {
    return enabled
}

func (stepper *countingStepper) Advance(sequencer *Sequencer) byte {
    stepper.Fires += 1
    sequencer.Step += 1
    return byte(stepper.Fires)
}

func TestSequencerUnderflow(test *testing.T){
    var sequencer Sequencer
    var stepper countingStepper

    sequencer.SetTimerLow(3)
    sequencer.SetTimerHigh(0, true)

    if sequencer.Timer != 3 {
        test.Fatalf("restart should load the timer with 3 but it is %v", sequencer.Timer)
    }

    /* 3, 2, 1, 0 */
    for i := 0; i < 3; i++ {
        sequencer.TickSequencer(true, &stepper)
    }
    if stepper.Fires != 0 {
        test.Fatalf("fired before the timer underflowed")
    }

    output := sequencer.TickSequencer(true, &stepper)
    if stepper.Fires != 1 {
        test.Fatalf("expected exactly one fire after 4 ticks but got %v", stepper.Fires)
    }
    if output != 1 {
        test.Fatalf("output should come from the stepper, got %v", output)
    }
    if sequencer.Timer != 3 {
        test.Fatalf("timer should be reloaded to 3 but is %v", sequencer.Timer)
    }

    for i := 0; i < 4; i++ {
        sequencer.TickSequencer(true, &stepper)
    }
    if stepper.Fires != 2 {
        test.Fatalf("period should be reload+1, fires=%v", stepper.Fires)
    }
}

func TestSequencerGate(test *testing.T){
    var sequencer Sequencer
    var stepper countingStepper

    sequencer.SetReload(0)
    for i := 0; i < 10; i++ {
        sequencer.TickSequencer(false, &stepper)
    }

    if stepper.Fires != 0 || sequencer.Timer != 0 {
        test.Fatalf("gated sequencer should not count: fires=%v timer=%v", stepper.Fires, sequencer.Timer)
    }
}

func TestSequencerTimerHalves(test *testing.T){
    var sequencer Sequencer

    sequencer.SetTimerLow(0xab)
    sequencer.SetTimerHigh(0xff, false)
    if sequencer.Period() != 0x7ab {
        test.Fatalf("expected period 0x7ab but got 0x%x", sequencer.Period())
    }
    if sequencer.Timer != 0 {
        test.Fatalf("timer high without restart should not reload the timer")
    }

    sequencer.Step = 5
    sequencer.SetTimerLow(0x01)
    if sequencer.Period() != 0x701 {
        test.Fatalf("timer low should keep the high bits, got 0x%x", sequencer.Period())
    }

    sequencer.SetTimerHigh(0x02, true)
    if sequencer.Period() != 0x201 || sequencer.Timer != 0x201 || sequencer.Step != 0 {
        test.Fatalf("restart: period=0x%x timer=0x%x step=%v", sequencer.Period(), sequencer.Timer, sequencer.Step)
    }
}
