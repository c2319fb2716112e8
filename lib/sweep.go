package lib

/*   http://wiki.nesdev.org/w/index.php/APU_Sweep */
type Sweep struct {
    Enabled bool
    Period byte
    Negate bool // false is add to period, true is subtract from period
    ShiftCount byte
    Divider byte
    Reload bool
    /* pulse 1 negates with ones' complement, pulse 2 with twos' complement */
    OnesComplement bool
}

func (sweep *Sweep) Set(value byte) {
    sweep.Enabled = (value >> 7) & 0x1 == 0x1
    sweep.Period = (value >> 4) & 0x7
    sweep.Negate = (value >> 3) & 0x1 == 0x1
    sweep.ShiftCount = value & 0x7
    sweep.Reload = true
}

func (sweep *Sweep) TargetPeriod(current uint16) uint16 {
    change := int(current >> sweep.ShiftCount)
    if sweep.Negate {
        change = -change
        if sweep.OnesComplement {
            change -= 1
        }
    }

    target := int(current) + change
    if target < 0 {
        target = 0
    }

    return uint16(target)
}

/* the channel is silenced whether or not the sweep is enabled */
func (sweep *Sweep) Muted(current uint16) bool {
    return current < 8 || sweep.TargetPeriod(current) > 0x7ff
}

/* clocked by every half frame */
func (sweep *Sweep) Tick(sequencer *Sequencer) {
    current := sequencer.Period()
    if sweep.Divider == 0 && sweep.Enabled && sweep.ShiftCount != 0 && !sweep.Muted(current) {
        sequencer.SetReload(sweep.TargetPeriod(current))
    }

    if sweep.Divider == 0 || sweep.Reload {
        sweep.Divider = sweep.Period
        sweep.Reload = false
    } else {
        sweep.Divider -= 1
    }
}
