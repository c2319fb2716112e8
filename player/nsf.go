package player

import (
    "bytes"
    "errors"
    "fmt"
    "io"
    "os"
    "log"
    "strings"

    "github.com/kazzmir/nes-apu/lib"
)

var ErrNotNSF error = errors.New("not an NSF file")

const nsfHeaderSize = 0x80

/* https://www.nesdev.org/wiki/NSF */
type NSFFile struct {
    Version byte
    LoadAddress uint16
    InitAddress uint16
    PlayAddress uint16
    TotalSongs byte
    /* 1 based, as stored in the header */
    StartingSong byte
    /* play routine period in microseconds */
    NTSCSpeed uint16
    PALSpeed uint16
    /* bit 0: pal, bit 1: dual region */
    PALMode byte
    SongName string
    Artist string
    Copyright string
    Data []byte
    InitialBanks [8]byte
    ExtraSoundChip byte
}

func isNSF(header []byte) bool {
    nsfBytes := []byte{'N', 'E', 'S', 'M', 0x1a}
    if len(header) < len(nsfBytes) {
        return false
    }

    return bytes.Equal(header[0:len(nsfBytes)], nsfBytes)
}

func IsNSFFile(path string) bool {
    file, err := os.Open(path)
    if err != nil {
        return false
    }
    defer file.Close()

    header := make([]byte, nsfHeaderSize)

    _, err = io.ReadFull(file, header)
    if err != nil {
        return false
    }

    return isNSF(header)
}

func headerString(data []byte) string {
    end := bytes.IndexByte(data, 0)
    if end == -1 {
        end = len(data)
    }
    return strings.TrimSpace(string(data[:end]))
}

func LoadNSF(path string) (NSFFile, error) {
    file, err := os.Open(path)
    if err != nil {
        return NSFFile{}, err
    }
    defer file.Close()

    nsf, err := ParseNSF(file)
    if err != nil {
        return NSFFile{}, fmt.Errorf("could not load '%v': %w", path, err)
    }

    return nsf, nil
}

func ParseNSF(reader io.Reader) (NSFFile, error) {
    header := make([]byte, nsfHeaderSize)

    _, err := io.ReadFull(reader, header)
    if err != nil {
        return NSFFile{}, fmt.Errorf("could not read NSF header: %w", err)
    }

    if !isNSF(header){
        return NSFFile{}, ErrNotNSF
    }

    var banks [8]byte
    copy(banks[:], header[0x70:0x78])

    nsf := NSFFile{
        Version: header[0x5],
        TotalSongs: header[0x6],
        StartingSong: header[0x7],
        LoadAddress: (uint16(header[0x9]) << 8) | uint16(header[0x8]),
        InitAddress: (uint16(header[0xb]) << 8) | uint16(header[0xa]),
        PlayAddress: (uint16(header[0xd]) << 8) | uint16(header[0xc]),
        SongName: headerString(header[0xe:0xe+32]),
        Artist: headerString(header[0x2e:0x2e+32]),
        Copyright: headerString(header[0x4e:0x4e+32]),
        NTSCSpeed: (uint16(header[0x6f]) << 8) | uint16(header[0x6e]),
        InitialBanks: banks,
        PALSpeed: (uint16(header[0x79]) << 8) | uint16(header[0x78]),
        PALMode: header[0x7a],
        ExtraSoundChip: header[0x7b],
    }

    nsf.Data, err = io.ReadAll(reader)
    if err != nil {
        return NSFFile{}, fmt.Errorf("could not read NSF data: %w", err)
    }

    if lib.ApuDebug > 0 {
        log.Printf("NSF '%v' by '%v', %v songs, load 0x%x init 0x%x play 0x%x, 0x%x bytes of music data", nsf.SongName, nsf.Artist, nsf.TotalSongs, nsf.LoadAddress, nsf.InitAddress, nsf.PlayAddress, len(nsf.Data))
    }

    if nsf.ExtraSoundChip != 0 {
        log.Printf("Warning: NSF uses expansion audio 0x%x which will not be heard", nsf.ExtraSoundChip)
    }

    return nsf, nil
}

func (nsf *NSFFile) UseBankSwitch() bool {
    for _, value := range nsf.InitialBanks {
        if value > 0 {
            return true
        }
    }

    return false
}

/* the region the tune was written for, dual region tunes play as ntsc */
func (nsf *NSFFile) Region() lib.Region {
    if nsf.PALMode & 0x3 == 0x1 {
        return lib.RegionPAL
    }
    return lib.RegionNTSC
}

/* cpu cycles between calls to the play routine */
func (nsf *NSFFile) PlayPeriod(timing lib.FrameTiming) float64 {
    speed := nsf.NTSCSpeed
    if timing.Region == lib.RegionPAL {
        speed = nsf.PALSpeed
    }

    if speed == 0 {
        return timing.CPUSpeed / timing.FrameRate
    }

    return float64(speed) * timing.CPUSpeed / 1000000.0
}
