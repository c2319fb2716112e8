package main

import (
    "context"
    "errors"
    "fmt"
    "io"
    "log"
    "os"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/kazzmir/nes-apu/cmd/common"
    "github.com/kazzmir/nes-apu/data"
    "github.com/kazzmir/nes-apu/lib"
    "github.com/kazzmir/nes-apu/player"
    "github.com/kazzmir/nes-apu/util"
    "github.com/kazzmir/nes-apu/util/thread"

    "github.com/hajimehoshi/ebiten/v2"
    "github.com/hajimehoshi/ebiten/v2/ebitenutil"
    "github.com/hajimehoshi/ebiten/v2/inpututil"
    audiolib "github.com/hajimehoshi/ebiten/v2/audio"
)

type PlayerAction int
const (
    PlayerNext PlayerAction = iota
    PlayerPrevious
    PlayerPause
)

/* samples per chunk handed to the audio player */
const ChunkSize = 1024

type Options struct {
    Path string
    Region lib.Region
    RegionSet bool
    SampleRate int
    Volume float64
    BufferMs int
    Track int
    Record string
    Offline bool
    Seconds float64
    Debug int
}

/* Either an nsf tune or a register script */
type Source struct {
    NSF *player.NSFFile
    Script *player.Script
}

func (source *Source) Tracks() int {
    if source.NSF != nil {
        return int(source.NSF.TotalSongs)
    }
    return 1
}

func (source *Source) Title() string {
    if source.NSF != nil {
        return fmt.Sprintf("%v - %v", source.NSF.SongName, source.NSF.Artist)
    }
    return "register script"
}

func (source *Source) MakeRenderer(region lib.Region, sampleRate int, track int) (player.Renderer, error) {
    if source.NSF != nil {
        nsfPlayer := player.MakeNSFPlayer(*source.NSF, region, float64(sampleRate))
        err := nsfPlayer.Start(byte(track))
        if err != nil {
            return nil, err
        }
        return nsfPlayer, nil
    }

    return player.MakeScriptPlayer(*source.Script, region, float64(sampleRate)), nil
}

/* demo:<name> plays one of the embedded register scripts */
func loadSource(path string) (Source, error) {
    if name, ok := strings.CutPrefix(path, "demo:"); ok {
        file, err := data.OpenScript(name)
        if err != nil {
            return Source{}, err
        }
        defer file.Close()

        script, err := player.ParseScript(file)
        if err != nil {
            return Source{}, err
        }
        return Source{Script: &script}, nil
    }

    if player.IsNSFFile(path) {
        nsf, err := player.LoadNSF(path)
        if err != nil {
            return Source{}, err
        }
        return Source{NSF: &nsf}, nil
    }

    script, err := player.LoadScript(path)
    if err != nil {
        return Source{}, err
    }
    return Source{Script: &script}, nil
}

type Status struct {
    lock sync.Mutex
    Title string
    Track int
    Tracks int
    Paused bool
    PlayTime time.Duration
}

func (status *Status) String() string {
    status.lock.Lock()
    defer status.lock.Unlock()

    var out strings.Builder
    fmt.Fprintf(&out, "%v\n", status.Title)
    fmt.Fprintf(&out, "Track %v/%v\n", status.Track + 1, status.Tracks)
    fmt.Fprintf(&out, "Time %v\n", status.PlayTime.Truncate(time.Second))
    if status.Paused {
        fmt.Fprintf(&out, "Paused\n")
    }
    fmt.Fprintf(&out, "\nspace: pause  left/right: track  escape: quit")
    return out.String()
}

func (status *Status) Update(f func(status *Status)){
    status.lock.Lock()
    defer status.lock.Unlock()
    f(status)
}

type PlayerEngine struct {
    Status *Status
    Actions chan PlayerAction
    Quit context.Context
}

func (engine *PlayerEngine) send(action PlayerAction){
    select {
        case engine.Actions <- action:
        default:
    }
}

func (engine *PlayerEngine) Update() error {
    if engine.Quit.Err() != nil {
        return ebiten.Termination
    }

    keys := inpututil.AppendJustPressedKeys(nil)
    for _, key := range keys {
        switch key {
            case ebiten.KeyEscape, ebiten.KeyCapsLock:
                return ebiten.Termination
            case ebiten.KeySpace:
                engine.send(PlayerPause)
            case ebiten.KeyRight:
                engine.send(PlayerNext)
            case ebiten.KeyLeft:
                engine.send(PlayerPrevious)
        }
    }

    return nil
}

func (engine *PlayerEngine) Draw(screen *ebiten.Image) {
    ebitenutil.DebugPrint(screen, engine.Status.String())
}

func (engine *PlayerEngine) Layout(outsideWidth, outsideHeight int) (int, int) {
    return outsideWidth, outsideHeight
}

type Playback struct {
    Group *thread.ThreadGroup
    Player *audiolib.Player
    /* closed once every sample of the track has been rendered */
    Finished chan struct{}
}

/* the track has been rendered and the audio player has run dry */
func (playback *Playback) Ended() bool {
    select {
        case <-playback.Finished:
            return !playback.Player.IsPlaying()
        default:
            return false
    }
}

func (playback *Playback) Stop(){
    playback.Group.Cancel()
    playback.Player.Close()
}

/* start rendering track into the audio context */
func playTrack(parent *thread.ThreadGroup, audio *audiolib.Context, source *Source, options *Options, track int) (*Playback, error) {
    renderer, err := source.MakeRenderer(options.Region, options.SampleRate, track)
    if err != nil {
        return nil, err
    }

    group := parent.SubGroup()
    finished := make(chan struct{})

    samples := make(chan []float32, 4)
    group.SpawnError(func(quit context.Context) error {
        defer close(finished)
        return player.Produce(quit, renderer, ChunkSize, samples)
    })

    speaker := samples
    if options.Record != "" {
        live := make(chan []float32, 4)
        record := make(chan []float32, 4)
        group.Spawn(func(){
            player.Tee(group.Context(), samples, live, record)
        })
        group.SpawnError(func(quit context.Context) error {
            return util.EncodeAudio(options.Record, quit, options.SampleRate, record)
        })
        speaker = live
    }

    audioPlayer, err := audio.NewPlayerF32(player.MakeAudioStream(group.Context(), speaker))
    if err != nil {
        group.Cancel()
        return nil, err
    }
    audioPlayer.SetBufferSize(time.Millisecond * time.Duration(options.BufferMs))
    audioPlayer.SetVolume(options.Volume)
    audioPlayer.Play()

    return &Playback{
        Group: group,
        Player: audioPlayer,
        Finished: finished,
    }, nil
}

/* the controller loop, owns playback and updates the status shown by the window */
func runController(group *thread.ThreadGroup, audio *audiolib.Context, source *Source, options *Options, status *Status, actions chan PlayerAction) error {
    track := options.Track
    paused := false

    playback, err := playTrack(group, audio, source, options, track)
    if err != nil {
        return err
    }

    second := time.NewTicker(1 * time.Second)
    defer second.Stop()

    for {
        select {
            case <-group.Done():
                playback.Stop()
                return nil
            case <-playback.Group.Done():
                playback.Stop()
                return playback.Group.Err()
            case <-second.C:
                if !paused {
                    status.Update(func(status *Status){
                        status.PlayTime += time.Second
                    })
                }

                /* scripts come to an end, nsf tunes play until stopped */
                if !paused && playback.Ended() {
                    playback.Stop()
                    group.Cancel()
                    return nil
                }
            case action := <-actions:
                trackDelta := 0
                switch action {
                    case PlayerNext:
                        trackDelta = 1
                    case PlayerPrevious:
                        trackDelta = -1
                    case PlayerPause:
                        paused = !paused
                        if paused {
                            playback.Player.Pause()
                        } else {
                            playback.Player.Play()
                        }
                        status.Update(func(status *Status){
                            status.Paused = paused
                        })
                }

                newTrack := track + trackDelta
                if newTrack < 0 {
                    newTrack = 0
                }
                if newTrack >= source.Tracks() {
                    newTrack = source.Tracks() - 1
                }

                if newTrack != track {
                    track = newTrack
                    paused = false
                    playback.Stop()

                    playback, err = playTrack(group, audio, source, options, track)
                    if err != nil {
                        return err
                    }

                    second.Reset(1 * time.Second)
                    status.Update(func(status *Status){
                        status.Track = track
                        status.Paused = false
                        status.PlayTime = 0
                    })
                }
        }
    }
}

func runWindow(source *Source, options *Options) error {
    audio := audiolib.NewContext(options.SampleRate)

    group := thread.NewThreadGroup(context.Background())
    actions := make(chan PlayerAction, 3)

    status := &Status{
        Title: source.Title(),
        Track: options.Track,
        Tracks: source.Tracks(),
    }

    group.SpawnError(func(quit context.Context) error {
        return runController(group, audio, source, options, status, actions)
    })

    engine := &PlayerEngine{
        Status: status,
        Actions: actions,
        Quit: group.Context(),
    }

    ebiten.SetWindowTitle("NES APU Player")
    ebiten.SetWindowSize(400, 160)
    ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

    err := ebiten.RunGame(engine)
    group.Cancel()
    waitErr := group.Wait()
    if err != nil {
        return err
    }
    return waitErr
}

/* render straight to the recording as fast as possible */
func runOffline(source *Source, options *Options) error {
    if options.Record == "" {
        return fmt.Errorf("offline rendering needs -record <file>")
    }

    renderer, err := source.MakeRenderer(options.Region, options.SampleRate, options.Track)
    if err != nil {
        return err
    }

    group := thread.NewThreadGroup(context.Background())
    samples := make(chan []float32, 4)

    total := int(options.Seconds * float64(options.SampleRate))
    group.SpawnError(func(quit context.Context) error {
        defer close(samples)
        produced := 0
        for produced < total && quit.Err() == nil {
            chunk, err := renderer.Render(min(ChunkSize, total - produced))
            produced += len(chunk)
            if len(chunk) > 0 {
                select {
                    case samples <- chunk:
                    case <-quit.Done():
                        return nil
                }
            }
            if err != nil {
                return ignoreEOF(err)
            }
        }
        return nil
    })

    group.SpawnError(func(quit context.Context) error {
        /* the recording should see every sample, so it ignores cancellation */
        return util.EncodeAudio(options.Record, context.Background(), options.SampleRate, samples)
    })

    return group.Wait()
}

func ignoreEOF(err error) error {
    if errors.Is(err, io.EOF) {
        return nil
    }
    return err
}

func parseArgs(args []string, config common.ConfigData) (Options, error) {
    options := Options{
        Region: config.GetRegion(),
        SampleRate: config.SampleRate,
        Volume: config.Volume,
        BufferMs: config.BufferMs,
        Debug: config.Debug,
        Track: -1,
        Seconds: 60,
    }

    nextArg := func(index *int, name string) (string, error) {
        *index += 1
        if *index >= len(args) {
            return "", fmt.Errorf("expected an argument for %v", name)
        }
        return args[*index], nil
    }

    for argIndex := 0; argIndex < len(args); argIndex++ {
        arg := args[argIndex]
        switch arg {
            case "-debug", "--debug":
                options.Debug += 1
            case "-pal", "--pal":
                options.Region = lib.RegionPAL
                options.RegionSet = true
            case "-ntsc", "--ntsc":
                options.Region = lib.RegionNTSC
                options.RegionSet = true
            case "-offline", "--offline":
                options.Offline = true
            case "-track", "--track":
                value, err := nextArg(&argIndex, arg)
                if err != nil {
                    return options, err
                }
                track, err := strconv.Atoi(value)
                if err != nil || track < 1 {
                    return options, fmt.Errorf("invalid track '%v'", value)
                }
                options.Track = track - 1
            case "-rate", "--rate":
                value, err := nextArg(&argIndex, arg)
                if err != nil {
                    return options, err
                }
                rate, err := strconv.Atoi(value)
                if err != nil || rate <= 0 {
                    return options, fmt.Errorf("invalid sample rate '%v'", value)
                }
                options.SampleRate = rate
            case "-seconds", "--seconds":
                value, err := nextArg(&argIndex, arg)
                if err != nil {
                    return options, err
                }
                seconds, err := strconv.ParseFloat(value, 64)
                if err != nil || seconds <= 0 {
                    return options, fmt.Errorf("invalid duration '%v'", value)
                }
                options.Seconds = seconds
            case "-mp3", "--mp3", "-record", "--record":
                value, err := nextArg(&argIndex, arg)
                if err != nil {
                    return options, err
                }
                options.Record = value
            default:
                if strings.HasPrefix(arg, "-") {
                    return options, fmt.Errorf("unknown option '%v'", arg)
                }
                options.Path = arg
        }
    }

    if options.Path == "" {
        return options, fmt.Errorf("give an nsf file or a register script")
    }

    return options, nil
}

func help(){
    fmt.Printf("apu-player [options] <file.nsf | script | demo:name>\n")
    fmt.Printf("  -pal, -ntsc       region to emulate\n")
    fmt.Printf("  -track <n>        nsf track to play, starting at 1\n")
    fmt.Printf("  -rate <hz>        output sample rate\n")
    fmt.Printf("  -mp3 <file>       record the output with ffmpeg (.mp3 .ogg .flac .wav)\n")
    fmt.Printf("  -offline          render to the recording without playing\n")
    fmt.Printf("  -seconds <n>      length of an offline nsf recording\n")
    fmt.Printf("  -debug            more apu logging, repeat for more\n")

    demos, err := data.ListScripts()
    if err == nil {
        fmt.Printf("demos: %v\n", strings.Join(demos, " "))
    }
}

func main(){
    log.SetFlags(log.Lshortfile | log.Lmicroseconds)

    config, err := common.LoadConfigData()
    if err != nil && !os.IsNotExist(err) {
        log.Printf("Could not load config, using defaults: %v", err)
    }

    options, err := parseArgs(os.Args[1:], config)
    if err != nil {
        log.Printf("Error: %v", err)
        help()
        os.Exit(1)
    }

    lib.ApuDebug = options.Debug

    source, err := loadSource(options.Path)
    if err != nil {
        log.Printf("Error: could not load '%v': %v", options.Path, err)
        os.Exit(1)
    }

    if source.NSF != nil {
        if !options.RegionSet {
            options.Region = source.NSF.Region()
        }
        if options.Track < 0 {
            options.Track = int(source.NSF.StartingSong) - 1
        }
        if options.Track < 0 || options.Track >= source.Tracks() {
            options.Track = 0
        }
        log.Printf("Playing '%v' by '%v' track %v/%v (%v)", source.NSF.SongName, source.NSF.Artist, options.Track + 1, source.Tracks(), options.Region)
    } else {
        options.Track = 0
        log.Printf("Playing %v register writes over %v cycles (%v)", len(source.Script.Writes), source.Script.Length(), options.Region)
    }

    if options.Offline {
        err = runOffline(&source, &options)
    } else {
        err = runWindow(&source, &options)
    }

    if err != nil {
        log.Printf("Error: %v", err)
        os.Exit(1)
    }
}
