package common

import (
    "os"
    "log"
    "encoding/json"
    "path/filepath"

    "github.com/kazzmir/nes-apu/lib"
)

const CurrentVersion = 1

type ConfigData struct {
    Version int `json:"version,omitempty"`
    /* "ntsc" or "pal" */
    Region string `json:"region,omitempty"`
    SampleRate int `json:"sample-rate,omitempty"`
    Volume float64 `json:"volume,omitempty"`
    Debug int `json:"debug,omitempty"`
    /* audio player buffer in milliseconds */
    BufferMs int `json:"buffer-ms,omitempty"`
}

/* make the directory where the config file lives, which is ~/.config/nes-apu on linux */
func GetOrCreateConfigDir() (string, error) {
    configDir, err := os.UserConfigDir()
    if err != nil {
        return "", err
    }
    configPath := filepath.Join(configDir, "nes-apu")
    err = os.MkdirAll(configPath, 0755)
    if err != nil {
        return "", err
    }

    return configPath, nil
}

func DefaultConfigData() ConfigData {
    return ConfigData{
        Version: CurrentVersion,
        Region: lib.RegionNTSC.String(),
        SampleRate: 44100,
        Volume: 0.8,
        BufferMs: 50,
    }
}

/* fill in anything the file left out or set out of range */
func (data ConfigData) normalize() ConfigData {
    defaults := DefaultConfigData()
    if data.Region == "" {
        data.Region = defaults.Region
    }
    if data.SampleRate <= 0 {
        data.SampleRate = defaults.SampleRate
    }
    if data.Volume <= 0 || data.Volume > 1 {
        data.Volume = defaults.Volume
    }
    if data.BufferMs <= 0 {
        data.BufferMs = defaults.BufferMs
    }
    return data
}

func (data ConfigData) GetRegion() lib.Region {
    return lib.ParseRegion(data.Region)
}

func LoadConfigDataFrom(path string) (ConfigData, error) {
    file, err := os.Open(path)
    if err != nil {
        return DefaultConfigData(), err
    }
    defer file.Close()

    var data ConfigData
    decoder := json.NewDecoder(file)
    err = decoder.Decode(&data)
    if err != nil {
        log.Printf("Could not load config data: %v", err)
        return DefaultConfigData(), err
    }

    if data.Version != CurrentVersion {
        return DefaultConfigData(), nil
    }

    return data.normalize(), nil
}

func LoadConfigData() (ConfigData, error) {
    configPath, err := GetOrCreateConfigDir()
    if err != nil {
        return DefaultConfigData(), err
    }
    return LoadConfigDataFrom(filepath.Join(configPath, "config.json"))
}

func SaveConfigDataTo(path string, data ConfigData) error {
    file, err := os.Create(path)
    if err != nil {
        return err
    }
    defer file.Close()

    encoder := json.NewEncoder(file)
    encoder.SetIndent("", "  ")
    return encoder.Encode(data)
}

/* create the config.json file in the config dir */
func SaveConfigData(data ConfigData) error {
    configPath, err := GetOrCreateConfigDir()
    if err != nil {
        return err
    }
    return SaveConfigDataTo(filepath.Join(configPath, "config.json"), data)
}
