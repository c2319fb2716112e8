//go:build !windows

package util

import (
    "os/exec"
    "os"
    "io"
    "log"
    "fmt"
    "time"
    "bytes"
    "encoding/binary"
    "errors"
    "context"
    "strconv"
    "path/filepath"
    "strings"
)

func FindFfmpegBinary() (string, error) {
    return exec.LookPath("ffmpeg")
}

func niceSize(path string) string {
    info, err := os.Stat(path)
    if err != nil {
        return ""
    }

    size := float64(info.Size())
    suffixes := []string{"b", "kb", "mb", "gb"}
    suffix := 0

    for size > 1024 && suffix < len(suffixes) - 1 {
        size /= 1024
        suffix += 1
    }

    return fmt.Sprintf("%.2f%v", size, suffixes[suffix])
}

func waitForProcess(process *exec.Cmd, timeout int){
    done := make(chan error, 1)
    go func(){
        done <- process.Wait()
    }()

    select {
        case <-done:
        case <-time.After(time.Second * time.Duration(timeout)):
            log.Printf("Killing pid %v", process.Process.Pid)
            process.Process.Kill()
            <-done
    }
}

/* ffmpeg audio codec for the output file's extension */
func AudioCodec(path string) (string, error) {
    switch strings.ToLower(filepath.Ext(path)) {
        case ".mp3": return "mp3", nil
        case ".ogg": return "libvorbis", nil
        case ".flac": return "flac", nil
        case ".wav": return "pcm_s16le", nil
    }

    return "", fmt.Errorf("no audio codec for '%v', use .mp3, .ogg, .flac or .wav", path)
}

func drain(name string, reader io.ReadCloser){
    buffer := make([]byte, 4096)
    for {
        _, err := reader.Read(buffer)
        if err != nil {
            /* Wait closes the pipes once ffmpeg exits */
            if err != io.EOF && !errors.Is(err, os.ErrClosed) {
                log.Printf("Could not read ffmpeg %v: %v", name, err)
            }
            return
        }
    }
}

/* Record mono float32 samples to path until quit is cancelled or audio is
 * closed. Blocks until ffmpeg has exited.
 */
func EncodeAudio(path string, mainQuit context.Context, sampleRate int, audio <-chan []float32) error {
    codec, err := AudioCodec(path)
    if err != nil {
        return err
    }

    ffmpegPath, err := FindFfmpegBinary()
    if err != nil {
        return fmt.Errorf("Could not find ffmpeg: %v", err)
    }

    audioReader, audioWriter, err := os.Pipe()
    if err != nil {
        return err
    }

    log.Printf("Launching ffmpeg")
    process := exec.Command(ffmpegPath,
        "-f", "f32le", // uncompressed pcm in float32 format
        "-ar", strconv.Itoa(sampleRate),
        "-ac", "1",
        "-i", "pipe:3", // audio is passed as fd 3
        "-acodec", codec,
        "-y", // overwrite output if the file already exists
        path)

    process.ExtraFiles = []*os.File{audioReader}

    stdout, err := process.StdoutPipe()
    if err != nil {
        return fmt.Errorf("Could not get ffmpeg stdout: %v", err)
    }

    stderr, err := process.StderrPipe()
    if err != nil {
        return fmt.Errorf("Could not get ffmpeg stderr: %v", err)
    }

    err = process.Start()
    if err != nil {
        return fmt.Errorf("Could not start ffmpeg: %v", err)
    }

    /* ffmpeg holds its own copy of the read end */
    audioReader.Close()

    go drain("stdout", stdout)
    go drain("stderr", stderr)

    log.Printf("Recording to %v", path)
    startTime := time.Now()

    var audioBuffer bytes.Buffer
    running := true
    for running {
        select {
            case <-mainQuit.Done():
                running = false
            case samples, ok := <-audio:
                if !ok {
                    running = false
                    break
                }
                audioBuffer.Reset()
                binary.Write(&audioBuffer, binary.LittleEndian, samples)
                _, err := audioWriter.Write(audioBuffer.Bytes())
                if err != nil {
                    log.Printf("Could not write to ffmpeg: %v", err)
                    running = false
                }
        }
    }

    /* ffmpeg will normally close on its own if its input is closed */
    audioWriter.Close()
    waitForProcess(process, 10)
    log.Printf("Recording has ended. Saved '%v' for %v size %v", path, time.Now().Sub(startTime), niceSize(path))

    return nil
}
