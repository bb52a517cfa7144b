package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mrdg/buzzer/audio"
	"github.com/mrdg/buzzer/dub"
)

type command struct {
	name  string
	help  string
	run   func(*env, []dub.Node) (string, error)
	arity int
}

var commands []command

func init() {
	// assigned in init because helpCommand reads the table
	commands = []command{
		{"on", "on NOTE: start a note", onCommand, 1},
		{"off", "off: release the current note", offCommand, 0},
		{"wave", "wave sine|saw|tan: select the waveform", waveCommand, 1},
		{"octave", "octave N: select the octave", octaveCommand, 1},
		{"volume", "volume 0-100: set the output volume", volumeCommand, 1},
		{"buffer", "buffer MS|DURATION: set the output buffer time", bufferCommand, 1},
		{"rate", "rate HZ: set the sample rate", rateCommand, 1},
		{"device", `device "NAME": select the output device`, deviceCommand, 1},
		{"devices", "devices: rescan and list output devices", devicesCommand, 0},
		{"notes", "notes: list playable notes", notesCommand, 0},
		{"set", "set KEY VALUE: set a property", setCommand, 2},
		{"get", "get KEY: show a property", getCommand, 1},
		{"props", "props: show all properties", propsCommand, 0},
		{"preset", "preset NAME: apply a preset", presetCommand, 1},
		{"status", "status: show the output status", statusCommand, 0},
		{"start", "start: (re)start output", startCommand, 0},
		{"stop", "stop: stop output", stopCommand, 0},
		{"clear", "clear: clear the error message", clearCommand, 0},
		{"help", "help: list commands", helpCommand, 0},
	}
}

func lookupCommand(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func onCommand(env *env, args []dub.Node) (string, error) {
	var note string
	if err := readArgs(args, &note); err != nil {
		return "", err
	}
	if !env.session.NoteOn(note) {
		return "", fmt.Errorf("unknown note: %s", note)
	}
	return "", nil
}

func offCommand(env *env, args []dub.Node) (string, error) {
	env.session.NoteOff()
	return "", nil
}

func waveCommand(env *env, args []dub.Node) (string, error) {
	var wave string
	if err := readArgs(args, &wave); err != nil {
		return "", err
	}
	if !env.session.SetWaveType(wave) {
		return "", fmt.Errorf("not a valid waveform type: %s", wave)
	}
	return "", nil
}

func octaveCommand(env *env, args []dub.Node) (string, error) {
	var octave int
	if err := readArgs(args, &octave); err != nil {
		return "", err
	}
	return "", env.session.SetOctave(octave)
}

func volumeCommand(env *env, args []dub.Node) (string, error) {
	var volume int
	if err := readArgs(args, &volume); err != nil {
		return "", err
	}
	return "", env.session.SetVolume(volume)
}

func bufferCommand(env *env, args []dub.Node) (string, error) {
	var d time.Duration
	if err := readArgs(args, &d); err != nil {
		return "", err
	}
	return "", env.session.SetBufferTime(d)
}

func rateCommand(env *env, args []dub.Node) (string, error) {
	var rate int
	if err := readArgs(args, &rate); err != nil {
		return "", err
	}
	return "", env.session.SetSampleRate(rate)
}

func deviceCommand(env *env, args []dub.Node) (string, error) {
	var name string
	if err := readArgs(args, &name); err != nil {
		return "", err
	}
	if !env.session.SetDevice(name) {
		return "", fmt.Errorf("%w: %s", audio.ErrUnknownDevice, name)
	}
	return "", nil
}

func devicesCommand(env *env, args []dub.Node) (string, error) {
	var b strings.Builder
	renderList(&b, env.session.Rescan(), env.session.Status().Device)
	return strings.TrimSuffix(b.String(), "\n"), nil
}

func notesCommand(env *env, args []dub.Node) (string, error) {
	return strings.Join(env.session.Notes(), " "), nil
}

func setCommand(env *env, args []dub.Node) (string, error) {
	var key string
	if err := readArgs(args[:1], &key); err != nil {
		return "", err
	}
	switch v := args[1].(type) {
	case dub.Int:
		return "", env.session.Set(key, int(v))
	case dub.Float:
		return "", env.session.Set(key, float64(v))
	case dub.String:
		return "", env.session.Set(key, string(v))
	case dub.Identifier:
		return "", env.session.Set(key, string(v))
	case dub.Duration:
		return "", env.session.Set(key, int(time.Duration(v)/time.Millisecond))
	default:
		return "", fmt.Errorf("unsupported property type: %v", dub.TypeName(v))
	}
}

func getCommand(env *env, args []dub.Node) (string, error) {
	var key string
	if err := readArgs(args, &key); err != nil {
		return "", err
	}
	return showProps(env, []string{key})
}

func propsCommand(env *env, args []dub.Node) (string, error) {
	return showProps(env, env.session.Keys())
}

func showProps(env *env, keys []string) (string, error) {
	var lines []string
	for _, key := range keys {
		v, err := env.session.Get(key)
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("%s %v", colorize(key, colorBlue), v))
	}
	return strings.Join(lines, "\n"), nil
}

func presetCommand(env *env, args []dub.Node) (string, error) {
	var name string
	if err := readArgs(args, &name); err != nil {
		return "", err
	}
	return "", audio.LoadPreset(name, env.session)
}

func statusCommand(env *env, args []dub.Node) (string, error) {
	var b strings.Builder
	renderStatus(&b, env.session.Status())
	return strings.TrimSuffix(b.String(), "\n"), nil
}

func startCommand(env *env, args []dub.Node) (string, error) {
	if err := env.session.Start(); err != nil {
		return "", err
	}
	return "", nil
}

func stopCommand(env *env, args []dub.Node) (string, error) {
	env.session.Stop()
	return "", nil
}

func clearCommand(env *env, args []dub.Node) (string, error) {
	env.session.ClearError()
	return "", nil
}

func helpCommand(env *env, args []dub.Node) (string, error) {
	lines := make([]string, 0, len(commands))
	for _, cmd := range commands {
		lines = append(lines, cmd.help)
	}
	return strings.Join(lines, "\n"), nil
}

func readArgs(args []dub.Node, slots ...interface{}) error {
	if len(args) != len(slots) {
		return errors.New("not enough arguments")
	}
	for n, arg := range args {
		dest := slots[n]
		switch p := dest.(type) {
		case *string:
			switch s := arg.(type) {
			case dub.String:
				*p = string(s)
			case dub.Identifier:
				*p = string(s)
			default:
				return fmt.Errorf("argument error: expected a string or identifier, got %s", dub.TypeName(arg))
			}
		case *int:
			n, ok := arg.(dub.Int)
			if !ok {
				return fmt.Errorf("argument error: expected an int, got %s", dub.TypeName(arg))
			}
			*p = int(n)
		case *time.Duration:
			// plain numbers are milliseconds
			switch d := arg.(type) {
			case dub.Duration:
				*p = time.Duration(d)
			case dub.Int:
				*p = time.Duration(d) * time.Millisecond
			default:
				return fmt.Errorf("argument error: expected a duration, got %s", dub.TypeName(arg))
			}
		default:
			panic("readArgs: unhandled destination type: " + fmt.Sprint(p))
		}
	}
	return nil
}
