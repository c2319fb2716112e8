package player

import (
    "github.com/kazzmir/nes-apu/lib"
)

/* Nonlinear approximation of the apu's output DAC.
 *   https://www.nesdev.org/wiki/APU_Mixer
 */
func Mix(apu *lib.APUState) float32 {
    var pulseValue float32
    pulse := apu.Pulse1.Sample() + apu.Pulse2.Sample()
    if pulse > 0 {
        pulseValue = 95.88 / (8128.0 / float32(pulse) + 100)
    }

    var triangle float32
    var noise float32

    /* a disabled triangle holds its level, the mixer should not hear it */
    if apu.Triangle.Enabled {
        triangle = float32(apu.Triangle.Sample()) / 8227.0
    }
    noise = float32(apu.Noise.Sample()) / 12241.0

    var restValue float32
    all := triangle + noise
    if all > 0.00001 {
        restValue = 159.79 / (1.0 / all + 100)
    }

    return pulseValue + restValue
}

/* Converts the apu's cpu rate output to the host sample rate by taking the
 * mixed level on the cycle each host sample falls on.
 */
type Sampler struct {
    SampleRate float64
    CyclesPerSample float64
    Volume float32
    counter float64
}

func MakeSampler(timing lib.FrameTiming, sampleRate float64) *Sampler {
    return &Sampler{
        SampleRate: sampleRate,
        CyclesPerSample: timing.CPUSpeed / sampleRate,
        Volume: 1,
    }
}

/* call once per cpu cycle. returns a sample when one is due. */
func (sampler *Sampler) Tick(apu *lib.APUState) (float32, bool) {
    sampler.counter += 1
    if sampler.counter < sampler.CyclesPerSample {
        return 0, false
    }

    sampler.counter -= sampler.CyclesPerSample
    return Mix(apu) * sampler.Volume, true
}

func (sampler *Sampler) Reset(){
    sampler.counter = 0
}
