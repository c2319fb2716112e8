package lib

/* Volume envelope shared by the pulse and noise channels.
 *   http://wiki.nesdev.org/w/index.php/APU_Envelope
 */
type Envelope struct {
    /* 4-bit value from the channel's control register */
    Volume byte
    DecayCounter byte
    DividerCounter byte
    Restart bool
}

/* set by a write to the channel's 4th register */
func (envelope *Envelope) RestartEnvelope() {
    envelope.Restart = true
}

func (envelope *Envelope) SetVolume(volume byte) {
    envelope.Volume = volume & 0xf
}

func (envelope *Envelope) Output(useConstantVolume bool) byte {
    if useConstantVolume {
        return envelope.Volume
    }
    return envelope.DecayCounter
}

/* clocked by every quarter frame */
func (envelope *Envelope) TickEnvelope(useConstantVolume bool, loop bool) byte {
    if envelope.Restart {
        envelope.Restart = false
        envelope.DividerCounter = 15
        envelope.DecayCounter = envelope.Volume
        return envelope.Output(useConstantVolume)
    }

    if envelope.DividerCounter == 0 {
        envelope.DividerCounter = envelope.Volume
        if envelope.DecayCounter == 0 {
            if loop {
                envelope.DecayCounter = 15
            }
        } else {
            envelope.DecayCounter -= 1
        }
    } else {
        envelope.DividerCounter -= 1
    }

    return envelope.Output(useConstantVolume)
}
