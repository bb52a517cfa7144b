package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mrdg/buzzer/audio"
)

const meterWidth = 20

func renderStatus(w io.Writer, st audio.SessionStatus) {
	state := colorize("stopped", colorRed)
	if st.Running {
		state = colorize("running", colorGreen)
		if !st.Watching {
			state = colorize("running", colorYellow)
		}
	}
	fmt.Fprintf(w, "%s %s on %s\n", state, st.Backend, quoteName(st.Device))
	fmt.Fprintf(w, "  %s, buffer %s, volume %d\n", st.Format, st.BufferTime, st.Volume)

	if e := st.Engine; e != nil {
		fmt.Fprintf(w, "  %s octave %d %s %s\n",
			colorize(e.Wave.String(), colorBlue), e.Octave,
			meter(e.Level), colorize(e.State.String(), colorMagenta))
	}
	if st.Error != "" {
		fmt.Fprintln(w, colorize(st.Error, colorYellow))
	}
}

// meter draws level in [0, 1] as a bar.
func meter(level float64) string {
	n := int(math.Round(level * meterWidth))
	n = max(0, min(n, meterWidth))
	return "[" + strings.Repeat("█", n) + strings.Repeat(" ", meterWidth-n) + "]"
}

// renderList prints one name per line, marking the selected one.
func renderList(w io.Writer, names []string, selected string) {
	if len(names) == 0 {
		fmt.Fprintln(w, colorize("no devices", colorRed))
		return
	}
	for _, name := range names {
		marker := " "
		if name == selected {
			marker = colorize("*", colorGreen)
		}
		fmt.Fprintf(w, "%s %s\n", marker, name)
	}
}

func quoteName(name string) string {
	if name == "" {
		return "default device"
	}
	return fmt.Sprintf("%q", name)
}

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
)

func colorize(text string, color int) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", color, text)
}
