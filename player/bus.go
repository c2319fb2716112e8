package player

import (
    "log"

    "github.com/kazzmir/nes-apu/lib"
)

type registerWrite struct {
    Address uint16
    Value byte
}

/* Memory map seen by the 6502 while an NSF tune runs. Implements the go6502
 * cpu.Memory interface.
 *
 * APU register writes are held until the cpu has finished the instruction
 * and the apu has been ticked through the instruction's cycles, so a write
 * lands on the instruction's last cycle.
 */
type Bus struct {
    RAM [0x800]byte
    WorkRAM [0x2000]byte

    Data []byte
    /* address the first byte of Data is loaded at */
    LoadAddr uint16
    /* bank registers $5FF8-$5FFF select the 4k page mapped at $8000 + n*$1000 */
    Banks [8]byte
    UseBankSwitch bool

    APU *lib.APUState

    pending []registerWrite
}

func MakeBus(apu *lib.APUState, data []byte, loadAddress uint16) *Bus {
    return &Bus{
        APU: apu,
        Data: data,
        LoadAddr: loadAddress,
    }
}

func (bus *Bus) SetBanks(banks [8]byte){
    bus.Banks = banks
    bus.UseBankSwitch = true
}

func (bus *Bus) readData(address uint16) byte {
    var use int
    if bus.UseBankSwitch {
        bank := int(address - 0x8000) / 0x1000
        /* banked data is padded so the load address lands at its offset in the first page */
        use = int(bus.Banks[bank]) * 0x1000 + int(address & 0xfff) - int(bus.LoadAddr & 0xfff)
    } else {
        use = int(address) - int(bus.LoadAddr)
    }

    if use < 0 || use >= len(bus.Data) {
        return 0
    }

    return bus.Data[use]
}

func (bus *Bus) LoadByte(address uint16) byte {
    switch {
        case address < 0x2000:
            return bus.RAM[address & 0x7ff]
        case address == lib.APUStatus:
            return bus.APU.ReadStatus()
        case address >= 0x5ff8 && address <= 0x5fff:
            return bus.Banks[address - 0x5ff8]
        case address >= 0x6000 && address < 0x8000:
            return bus.WorkRAM[address - 0x6000]
        case address >= 0x8000:
            return bus.readData(address)
    }

    return 0
}

func (bus *Bus) LoadBytes(address uint16, data []byte){
    for i := range data {
        data[i] = bus.LoadByte(address + uint16(i))
    }
}

/* the high byte wraps within the page, like the NMOS 6502 */
func (bus *Bus) LoadAddress(address uint16) uint16 {
    if address & 0xff == 0xff {
        return uint16(bus.LoadByte(address)) | uint16(bus.LoadByte(address - 0xff)) << 8
    }
    return uint16(bus.LoadByte(address)) | uint16(bus.LoadByte(address + 1)) << 8
}

func (bus *Bus) StoreByte(address uint16, value byte){
    switch {
        case address < 0x2000:
            bus.RAM[address & 0x7ff] = value
        case address >= lib.APUPulse1DutyCycle && address <= lib.APUFrameCounter:
            bus.pending = append(bus.pending, registerWrite{Address: address, Value: value})
        case address >= 0x5ff8 && address <= 0x5fff:
            bus.Banks[address - 0x5ff8] = value
            bus.UseBankSwitch = true
        case address >= 0x6000 && address < 0x8000:
            bus.WorkRAM[address - 0x6000] = value
        default:
            if lib.ApuDebug > 1 {
                log.Printf("Bus: ignoring write 0x%x=0x%x", address, value)
            }
    }
}

func (bus *Bus) StoreBytes(address uint16, data []byte){
    for i, value := range data {
        bus.StoreByte(address + uint16(i), value)
    }
}

func (bus *Bus) StoreAddress(address uint16, value uint16){
    bus.StoreByte(address, byte(value & 0xff))
    if address & 0xff == 0xff {
        bus.StoreByte(address - 0xff, byte(value >> 8))
    } else {
        bus.StoreByte(address + 1, byte(value >> 8))
    }
}

/* hand the register writes of the last instruction to the apu */
func (bus *Bus) Flush(){
    for _, write := range bus.pending {
        bus.APU.WriteRegister(write.Address, write.Value)
    }
    bus.pending = bus.pending[:0]
}

func (bus *Bus) Pending() int {
    return len(bus.pending)
}
