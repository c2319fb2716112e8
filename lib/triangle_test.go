package lib

import (
    "testing"
)

func TestTriangleGate(test *testing.T){
    var triangle Triangle
    triangle.SetEnabled(true)
    triangle.WriteCounter(0x7f)
    triangle.WriteTimerLow(0)
    triangle.WriteTimerHigh(0x08)

    if triangle.Length.Counter != 254 {
        test.Fatalf("expected length 254 but got %v", triangle.Length.Counter)
    }

    /* linear counter is still 0 */
    triangle.Tick()
    if triangle.Sequencer.Step != 0 {
        test.Fatalf("triangle stepped with an empty linear counter")
    }

    triangle.QuarterFrame()
    if triangle.LinearCounter != 127 || triangle.LinearCounterReloadFlag {
        test.Fatalf("linear counter=%v reload flag=%v", triangle.LinearCounter, triangle.LinearCounterReloadFlag)
    }

    for i := 0; i < 32; i++ {
        triangle.Tick()
        step := (i + 1) & 0x1f
        if triangle.Sample() != TriangleWaveForm[step] {
            test.Fatalf("tick %v: expected %v but got %v", i, TriangleWaveForm[step], triangle.Sample())
        }
    }

    triangle.Length.Clear()
    step := triangle.Sequencer.Step
    level := triangle.Sample()
    for i := 0; i < 10; i++ {
        triangle.Tick()
    }
    if triangle.Sequencer.Step != step || triangle.Sample() != level {
        test.Fatalf("silenced triangle should hold its level")
    }
}

func TestTriangleLinearControl(test *testing.T){
    var triangle Triangle
    triangle.WriteCounter(0x82)
    triangle.WriteTimerHigh(0)

    triangle.QuarterFrame()
    triangle.QuarterFrame()
    if triangle.LinearCounter != 2 {
        test.Fatalf("control flag keeps reloading, expected 2 but got %v", triangle.LinearCounter)
    }

    triangle.WriteCounter(0x02)
    triangle.QuarterFrame()
    triangle.QuarterFrame()
    triangle.QuarterFrame()
    if triangle.LinearCounter != 0 {
        test.Fatalf("expected linear counter 0 but got %v", triangle.LinearCounter)
    }
}
