package data

import (
    "testing"

    "github.com/kazzmir/nes-apu/player"
)

func TestScriptsParse(test *testing.T){
    names, err := ListScripts()
    if err != nil {
        test.Fatalf("could not list scripts: %v", err)
    }

    if len(names) < 3 {
        test.Fatalf("expected at least 3 scripts but found %v", names)
    }

    for _, name := range names {
        file, err := OpenScript(name)
        if err != nil {
            test.Fatalf("could not open %v: %v", name, err)
        }

        script, err := player.ParseScript(file)
        file.Close()
        if err != nil {
            test.Fatalf("could not parse %v: %v", name, err)
        }

        if len(script.Writes) == 0 {
            test.Fatalf("%v has no writes", name)
        }
    }
}

func TestOpenScriptExtension(test *testing.T){
    file, err := OpenScript("scale.apu")
    if err != nil {
        test.Fatalf("could not open with the extension: %v", err)
    }
    file.Close()

    _, err = OpenScript("missing")
    if err == nil {
        test.Fatalf("missing script should not open")
    }
}
