package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mrdg/buzzer/audio"
	"github.com/mrdg/buzzer/dub"
)

type env struct {
	session *audio.Session
	out     io.Writer

	// last session error shown to the user
	lastErr string
}

// eval runs every command on the line and returns their output. It stops at
// the first failing command.
func (e *env) eval(input string) (string, error) {
	cmds, err := dub.ParseLine(input)
	if err != nil {
		return "", err
	}
	var out []string
	for _, command := range cmds {
		result, err := e.run(command)
		if err != nil {
			return strings.Join(out, "\n"), err
		}
		if result != "" {
			out = append(out, result)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (e *env) run(command dub.Command) (string, error) {
	name := string(command.Name)
	cmd, ok := lookupCommand(name)
	if !ok {
		return "", fmt.Errorf("unknown command: %s", name)
	}
	if len(command.Args) != cmd.arity {
		return "", fmt.Errorf("%s: wrong number of arguments: want %v, got %v",
			cmd.name, cmd.arity, len(command.Args))
	}
	result, err := cmd.run(e, command.Args)
	if err != nil {
		return result, fmt.Errorf("%s error: %w", cmd.name, err)
	}
	return result, nil
}

func completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range commands {
		var args []readline.PrefixCompleterInterface
		switch cmd.name {
		case "on":
			for _, n := range audio.DefaultNotes.Names() {
				args = append(args, readline.PcItem(n))
			}
		case "wave":
			for _, w := range []audio.Waveform{audio.WaveSine, audio.WaveSaw, audio.WaveTan} {
				args = append(args, readline.PcItem(w.String()))
			}
		case "preset":
			for _, p := range audio.Presets() {
				args = append(args, readline.PcItem(p))
			}
		}
		items = append(items, readline.PcItem(cmd.name, args...))
	}
	return readline.NewPrefixCompleter(items...)
}

func repl(env *env) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "> ",
		AutoComplete: completer(),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(env.out, err)
			continue
		}
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		result, err := env.eval(line)
		if result != "" {
			fmt.Fprintln(env.out, result)
		}
		if err != nil {
			fmt.Fprintln(env.out, colorize(err.Error(), colorRed))
		}
		if msg := env.session.Err(); msg != env.lastErr {
			if msg != "" {
				fmt.Fprintln(env.out, colorize(msg, colorYellow))
			}
			env.lastErr = msg
		}
	}
}
