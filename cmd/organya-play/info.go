package main

import (
	"fmt"
	"io"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vsariola/organya"
	"github.com/vsariola/organya/player"
)

const infoTemplate = `{{ .Name }}
  format:  {{ .Song.Tag }}
  tempo:   {{ .Song.Click }} ms per row, {{ .Song.StepsPerBar }} steps per bar, {{ .Song.BeatsPerStep }} beats per step
  loop:    {{ if .Song.Loops }}rows {{ .Song.LoopStart }}-{{ .Song.LoopEnd }}{{ else }}none{{ end }}
  length:  {{ printf "%.1f" .Seconds }} s
  tracks:  {{ .Melodic }} melodic, {{ .Drums }} drum
{{- range .Tracks }}
  {{ printf "%-7s" (title .Kind) }} {{ .Number }}  instrument {{ printf "%3d" .Instrument }}  pitch {{ printf "%4d" .Pitch }}  {{ printf "%4d" .Notes }} notes {{ repeat .Bar "#" }}{{ if .Muted }} (muted){{ end }}
{{- end }}
`

type (
	songInfo struct {
		Name    string
		Song    *organya.Song
		Seconds float64
		Melodic int // melodic tracks with notes
		Drums   int // drum tracks with notes
		Tracks  []trackInfo
	}

	trackInfo struct {
		Kind       string
		Number     int
		Instrument uint8
		Pitch      uint16
		Notes      int
		Bar        int
		Muted      bool
	}
)

const maxBar = 20

var infoTmpl = template.Must(template.New("info").
	Funcs(sprig.TxtFuncMap()).
	Funcs(template.FuncMap{"title": cases.Title(language.English).String}).
	Parse(infoTemplate))

func printInfo(w io.Writer, filename string, song *organya.Song) error {
	si := songInfo{
		Name:    filepath.Base(filename),
		Song:    song,
		Seconds: float64(player.PassFrames(song)) / organya.SampleRate,
	}
	si.Melodic = inUse(song.Melodic())
	si.Drums = inUse(song.Drums())
	most := 1
	for _, t := range song.Tracks {
		most = max(most, len(t.Notes))
	}
	for i, t := range song.Tracks {
		if len(t.Notes) == 0 {
			continue
		}
		ti := trackInfo{
			Kind:       "melodic",
			Number:     i,
			Instrument: t.Index,
			Pitch:      t.Pitch,
			Notes:      len(t.Notes),
			Bar:        (len(t.Notes)*maxBar + most - 1) / most,
			Muted:      t.Muted(),
		}
		if t.Drum {
			ti.Kind = "drum"
			ti.Number = i - organya.NumMelodic
		}
		si.Tracks = append(si.Tracks, ti)
	}
	if err := infoTmpl.Execute(w, si); err != nil {
		return fmt.Errorf("could not execute info template: %w", err)
	}
	return nil
}

func inUse(tracks []organya.Track) int {
	n := 0
	for _, t := range tracks {
		if len(t.Notes) > 0 {
			n++
		}
	}
	return n
}
