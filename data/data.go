package data

import (
    "embed"
    "io/fs"
    "path"
    "strings"
)

/* register scripts shipped with the player */
//go:embed scripts/*.apu
var scriptsFS embed.FS

func OpenScript(name string) (fs.File, error) {
    if !strings.HasSuffix(name, ".apu") {
        name += ".apu"
    }
    return scriptsFS.Open(path.Join("scripts", name))
}

/* names of the embedded scripts without their extension */
func ListScripts() ([]string, error) {
    entries, err := fs.ReadDir(scriptsFS, "scripts")
    if err != nil {
        return nil, err
    }

    var out []string
    for _, entry := range entries {
        out = append(out, strings.TrimSuffix(entry.Name(), ".apu"))
    }
    return out, nil
}
