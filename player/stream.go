package player

import (
    "context"
    "encoding/binary"
    "errors"
    "io"
    "math"
)

/* anything that produces mono samples at the host rate */
type Renderer interface {
    Render(count int) ([]float32, error)
}

/* Render chunks of samples into audio until quit is cancelled or the
 * renderer reports an error. The channel is closed on return. A renderer
 * that finishes with io.EOF is not an error.
 */
func Produce(quit context.Context, renderer Renderer, chunk int, audio chan<- []float32) error {
    defer close(audio)

    for quit.Err() == nil {
        samples, err := renderer.Render(chunk)
        if len(samples) > 0 {
            select {
                case audio <- samples:
                case <-quit.Done():
                    return nil
            }
        }

        if errors.Is(err, io.EOF) {
            return nil
        }
        if err != nil {
            return err
        }
    }

    return nil
}

/* send every chunk from input to each of the outputs, closing them when input closes */
func Tee(quit context.Context, input <-chan []float32, outputs ...chan<- []float32){
    defer func(){
        for _, output := range outputs {
            close(output)
        }
    }()

    for {
        select {
            case <-quit.Done():
                return
            case samples, ok := <-input:
                if !ok {
                    return
                }
                for _, output := range outputs {
                    select {
                        case output <- samples:
                        case <-quit.Done():
                            return
                    }
                }
        }
    }
}

/* io.Reader of stereo float32 little endian frames, the format expected by
 * ebiten's audio.Context.NewPlayerF32. Mono samples are written to both
 * channels.
 */
type AudioStream struct {
    audio <-chan []float32
    quit context.Context
    buffer []byte
}

func MakeAudioStream(quit context.Context, audio <-chan []float32) *AudioStream {
    return &AudioStream{
        audio: audio,
        quit: quit,
    }
}

func encodeStereo(samples []float32, out []byte) []byte {
    for _, sample := range samples {
        bits := math.Float32bits(sample)
        out = binary.LittleEndian.AppendUint32(out, bits)
        out = binary.LittleEndian.AppendUint32(out, bits)
    }
    return out
}

func (stream *AudioStream) Read(data []byte) (int, error) {
    for len(stream.buffer) == 0 {
        select {
            case <-stream.quit.Done():
                return 0, io.EOF
            case samples, ok := <-stream.audio:
                if !ok {
                    return 0, io.EOF
                }
                stream.buffer = encodeStereo(samples, stream.buffer[:0])
        }
    }

    count := copy(data, stream.buffer)
    stream.buffer = stream.buffer[count:]
    return count, nil
}
