package lib

import (
    "testing"
)

func TestEnvelopeRestart(test *testing.T){
    var envelope Envelope
    envelope.SetVolume(5)
    envelope.DecayCounter = 9
    envelope.DividerCounter = 2

    envelope.RestartEnvelope()
    output := envelope.TickEnvelope(false, false)

    if envelope.Restart {
        test.Fatalf("restart flag should be cleared")
    }
    if envelope.DividerCounter != 15 || envelope.DecayCounter != 5 {
        test.Fatalf("restart should set divider=15 decay=5, got divider=%v decay=%v", envelope.DividerCounter, envelope.DecayCounter)
    }
    if output != 5 {
        test.Fatalf("decaying output should be 5 but was %v", output)
    }
}

func TestEnvelopeDecayHoldsAtZero(test *testing.T){
    var envelope Envelope
    envelope.SetVolume(2)
    envelope.RestartEnvelope()
    envelope.TickEnvelope(false, false)

    reachedZero := false
    for i := 0; i < 500; i++ {
        envelope.TickEnvelope(false, false)

        if envelope.DividerCounter > 15 || envelope.DecayCounter > 15 {
            test.Fatalf("counter wrapped at tick %v: divider=%v decay=%v", i, envelope.DividerCounter, envelope.DecayCounter)
        }

        if reachedZero && envelope.DecayCounter != 0 {
            test.Fatalf("decay left 0 without loop at tick %v", i)
        }

        if envelope.DecayCounter == 0 {
            reachedZero = true
        }
    }

    if !reachedZero {
        test.Fatalf("decay never reached 0")
    }

    /* the divider keeps cycling through volume..0 */
    seen := make(map[byte]bool)
    for i := 0; i < 6; i++ {
        envelope.TickEnvelope(false, false)
        seen[envelope.DividerCounter] = true
    }
    for value := byte(0); value <= 2; value++ {
        if !seen[value] {
            test.Fatalf("divider never took the value %v: %v", value, seen)
        }
    }
}

func TestEnvelopeDecaySchedule(test *testing.T){
    var envelope Envelope
    envelope.SetVolume(1)
    envelope.RestartEnvelope()
    envelope.TickEnvelope(false, false)

    /* divider counts 15 down to 0 before the first decay step */
    for i := 0; i < 15; i++ {
        envelope.TickEnvelope(false, false)
    }
    if envelope.DecayCounter != 1 || envelope.DividerCounter != 0 {
        test.Fatalf("expected decay=1 divider=0 but got decay=%v divider=%v", envelope.DecayCounter, envelope.DividerCounter)
    }

    envelope.TickEnvelope(false, false)
    if envelope.DecayCounter != 0 || envelope.DividerCounter != 1 {
        test.Fatalf("expected decay=0 divider=1 but got decay=%v divider=%v", envelope.DecayCounter, envelope.DividerCounter)
    }
}

func TestEnvelopeLoop(test *testing.T){
    var envelope Envelope
    envelope.SetVolume(0)
    envelope.RestartEnvelope()
    envelope.TickEnvelope(false, true)

    /* divider=15 from the restart */
    for i := 0; i < 15; i++ {
        envelope.TickEnvelope(false, true)
    }

    envelope.TickEnvelope(false, true)
    if envelope.DecayCounter != 15 {
        test.Fatalf("looping envelope should reload decay to 15, got %v", envelope.DecayCounter)
    }

    envelope.TickEnvelope(false, true)
    if envelope.DecayCounter != 14 {
        test.Fatalf("expected decay 14 but got %v", envelope.DecayCounter)
    }
}

func TestEnvelopeConstantVolume(test *testing.T){
    var envelope Envelope
    envelope.SetVolume(0x1c)
    envelope.DecayCounter = 3

    if envelope.Volume != 0xc {
        test.Fatalf("volume should be masked to 4 bits, got %v", envelope.Volume)
    }

    if envelope.Output(true) != 0xc {
        test.Fatalf("constant volume output should be 12 but was %v", envelope.Output(true))
    }
    if envelope.Output(false) != 3 {
        test.Fatalf("decay output should be 3 but was %v", envelope.Output(false))
    }
}
