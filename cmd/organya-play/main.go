package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/vsariola/organya"
	"github.com/vsariola/organya/config"
	"github.com/vsariola/organya/midi"
	"github.com/vsariola/organya/oto"
	"github.com/vsariola/organya/player"
	"github.com/vsariola/organya/version"
	"github.com/vsariola/organya/wavebank"
)

var logger = log.New(os.Stderr, "organya-play: ", 0)

func main() {
	os.Exit(run())
}

func run() int {
	help := pflag.BoolP("help", "h", false, "Show help.")
	configPath := pflag.StringP("config", "c", "", "Config file (default: <user config dir>/organya/config.yml).")
	bankPath := pflag.StringP("bank", "b", "", "Instrument bank file; overrides the config (default: "+config.DefaultBank+").")
	directory := pflag.StringP("output", "o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, files are placed in the working directory.")
	play := pflag.BoolP("play", "p", false, "Play the input songs (default behaviour when no other output is defined).")
	duration := pflag.DurationP("duration", "d", 0, "Play each song for this long before moving to the next one; by default play until interrupted.")
	rawOut := pflag.BoolP("raw", "r", false, "Output the rendered song as .raw file. By default, saves stereo float32 buffer to disk.")
	wavOut := pflag.BoolP("wav", "w", false, "Output the rendered song as 16-bit .wav file.")
	pcm := pflag.Bool("pcm16", false, "Convert .raw output to 16-bit signed PCM.")
	midiOut := pflag.BoolP("midi", "m", false, "Output the song as a Standard MIDI File (.mid).")
	yamlOut := pflag.BoolP("yaml", "y", false, "Output the decoded song as .yml.")
	loops := pflag.IntP("loops", "l", 0, "Number of passes through the song loop when rendering audio files; overrides the config.")
	info := pflag.BoolP("info", "i", false, "Print a summary of each song.")
	dump := pflag.Bool("dump", false, "Dump the decoded song structure to standard output.")
	verbose := pflag.Bool("verbose", false, "Log what is being done.")
	versionFlag := pflag.BoolP("version", "v", false, "Print version.")
	pflag.Usage = printUsage
	pflag.Parse()
	if *versionFlag {
		fmt.Println(version.String())
		return 0
	}
	if pflag.NArg() == 0 || *help {
		pflag.Usage()
		return 0
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return report("", err)
	}
	if *bankPath != "" {
		cfg.Bank = *bankPath
	}
	if *directory != "" {
		cfg.Output = *directory
	}
	if *loops > 0 {
		cfg.Loops = *loops
	}
	if !*rawOut && !*wavOut && !*midiOut && !*yamlOut && !*info && !*dump {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the file
	}
	var bank *wavebank.Bank
	if *play || *rawOut || *wavOut {
		bank, err = openBank(cfg)
		if err != nil {
			return report("", err)
		}
		defer bank.Close()
		if *verbose {
			logger.Printf("bank %v: %d melodic waveforms of %d samples, %d drums at %d Hz", cfg.Bank, bank.NumMelodic(), bank.CycleLength(), bank.NumDrums(), bank.DrumRate())
		}
	}
	var audioContext organya.AudioContext
	if *play {
		audioContext, err = oto.NewContext()
		if err != nil {
			return report("", fault.Wrap(err, fmsg.WithDesc("could not acquire oto AudioContext", "No audio device is available.")))
		}
		defer audioContext.Close()
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	process := func(filename string) error {
		song, err := organya.ParseFile(filename)
		if err != nil {
			return fault.Wrap(err, fmsg.WithDesc("could not load song", "The file is not a valid Organya song."), ftag.With(ftag.InvalidArgument))
		}
		if *verbose {
			logger.Printf("%v: %d notes, %d samples per row, loop %d-%d", filename, song.NumNotes(), song.SamplesPerRow(), song.LoopStart, song.LoopEnd)
		}
		if *dump {
			spew.Dump(song)
		}
		if *info {
			if err := printInfo(os.Stdout, filename, song); err != nil {
				return fault.Wrap(err, fmsg.With("could not print song info"))
			}
		}
		if *yamlOut {
			contents, err := yaml.Marshal(song)
			if err != nil {
				return fault.Wrap(err, fmsg.With("could not marshal song to yaml"))
			}
			if err := output(cfg, filename, ".yml", contents); err != nil {
				return err
			}
		}
		if *midiOut {
			var b bytes.Buffer
			if err := midi.Write(&b, song); err != nil {
				return fault.Wrap(err, fmsg.With("could not encode song as midi"))
			}
			if err := output(cfg, filename, ".mid", b.Bytes()); err != nil {
				return err
			}
		}
		if *rawOut || *wavOut {
			if err := export(cfg, filename, song, bank, *rawOut, *wavOut, *pcm); err != nil {
				return err
			}
		}
		if *play {
			return playSong(ctx, audioContext, cfg, song, bank, *duration)
		}
		return nil
	}
	retval := 0
	for _, param := range pflag.Args() {
		if ctx.Err() != nil {
			break
		}
		files := []string{param}
		if fi, err := os.Stat(param); err == nil && fi.IsDir() {
			files, err = filepath.Glob(filepath.Join(param, "*.org"))
			if err != nil {
				logger.Printf("could not glob the path %v for org files: %v", param, err)
				retval = 1
				continue
			}
		}
		for _, file := range files {
			if err := process(file); err != nil {
				retval = report(file, err)
			}
		}
	}
	return retval
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return config.Default(), nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fault.Wrap(err, fmsg.WithDesc("could not load config", "The config file is not valid."), ftag.With(ftag.InvalidArgument))
	}
	return cfg, nil
}

func openBank(cfg config.Config) (*wavebank.Bank, error) {
	open := wavebank.LoadFile
	if cfg.Lazy {
		open = wavebank.OpenFile
	}
	bank, err := open(cfg.Bank)
	if err != nil {
		return nil, fault.Wrap(err,
			fmsg.WithDesc("could not load instrument bank", fmt.Sprintf("Could not load the instrument bank %s; use --bank to point to it.", cfg.Bank)),
			ftag.With(ftag.NotFound))
	}
	return bank, nil
}

func playSong(ctx context.Context, audioContext organya.AudioContext, cfg config.Config, song *organya.Song, bank *wavebank.Bank, duration time.Duration) error {
	stream, err := player.NewSongStream(song, bank, cfg.PlayerOptions())
	if err != nil {
		return fault.Wrap(err, fmsg.WithDesc("could not set up playback", "The song uses instruments missing from the bank."), ftag.With(ftag.InvalidArgument))
	}
	playWaiter := audioContext.Play(stream)
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}
	go func() {
		<-ctx.Done()
		playWaiter.Close()
	}()
	playWaiter.Wait()
	return nil
}

func export(cfg config.Config, filename string, song *organya.Song, bank *wavebank.Bank, raw, wav, pcm bool) error {
	opts := cfg.PlayerOptions()
	frames := opts.LeadIn + player.PassFrames(song) + (cfg.Loops-1)*player.LoopFrames(song)
	buffer, err := player.Render(song, bank, frames, opts)
	if err != nil {
		return fault.Wrap(err, fmsg.WithDesc("could not render song", "The song uses instruments missing from the bank."), ftag.With(ftag.InvalidArgument))
	}
	if raw {
		contents, err := organya.Raw(buffer, pcm)
		if err != nil {
			return fault.Wrap(err, fmsg.With("could not generate .raw file"))
		}
		if err := output(cfg, filename, ".raw", contents); err != nil {
			return err
		}
	}
	if wav {
		f, err := create(cfg, filename, ".wav")
		if err != nil {
			return err
		}
		if err := writeWav(f, buffer); err != nil {
			return err
		}
	}
	return nil
}

type wavFile interface {
	io.WriteSeeker
	io.Closer
	Name() string
}

// writeWav encodes buffer to f and closes it; a failed close is reported,
// as it can mean the data never reached the disk.
func writeWav(f wavFile, buffer organya.AudioBuffer) error {
	if err := organya.Wav(f, buffer); err != nil {
		f.Close()
		return fault.Wrap(err, fmsg.With("could not generate .wav file"))
	}
	if err := f.Close(); err != nil {
		return fault.Wrap(err, fmsg.With(fmt.Sprintf("could not write file %v", f.Name())))
	}
	return nil
}

func outputPath(cfg config.Config, filename, extension string) (string, error) {
	_, name := filepath.Split(filename)
	dir := cfg.Output
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", fault.Wrap(err, fmsg.WithDesc("could not get working directory", "Specify the output directory explicitly."))
		}
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fault.Wrap(err, fmsg.With(fmt.Sprintf("could not create output directory %v", dir)))
	}
	name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
	return filepath.Join(dir, name), nil
}

func output(cfg config.Config, filename, extension string, contents []byte) error {
	f, err := outputPath(cfg, filename, extension)
	if err != nil {
		return err
	}
	if err := os.WriteFile(f, contents, 0644); err != nil {
		return fault.Wrap(err, fmsg.With(fmt.Sprintf("could not write file %v", f)))
	}
	return nil
}

func create(cfg config.Config, filename, extension string) (*os.File, error) {
	path, err := outputPath(cfg, filename, extension)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With(fmt.Sprintf("could not create file %v", path)))
	}
	return f, nil
}

// report logs the user facing description and the full error chain, and
// returns the exit code for the error.
func report(file string, err error) int {
	prefix := ""
	if file != "" {
		prefix = file + ": "
	}
	if issue := fmsg.GetIssue(err); issue != "" {
		logger.Printf("%s%v", prefix, issue)
	}
	logger.Printf("%s%v", prefix, err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch ftag.Get(err) {
	case ftag.InvalidArgument:
		return 2
	case ftag.NotFound:
		return 3
	}
	return 1
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Command line utility for playing and converting Organya (.org) songs.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	pflag.PrintDefaults()
}
