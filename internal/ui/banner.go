// Package ui provides styled console output for PromptPal.
package ui

import (
	"fmt"

	"github.com/fatih/color"
)

// Version is printed in the banner.
const Version = "v0.1.0"

// ══════════════════════════════════════════════════════════════════════════════
// ASCII ART BANNER
// ══════════════════════════════════════════════════════════════════════════════

var bannerLines = []struct {
	prompt, pal string
}{
	{"██████╗ ██████╗  ██████╗ ███╗   ███╗██████╗ ████████╗", "██████╗  █████╗ ██╗     "},
	{"██╔══██╗██╔══██╗██╔═══██╗████╗ ████║██╔══██╗╚══██╔══╝", "██╔══██╗██╔══██╗██║     "},
	{"██████╔╝██████╔╝██║   ██║██╔████╔██║██████╔╝   ██║   ", "██████╔╝███████║██║     "},
	{"██╔═══╝ ██╔══██╗██║   ██║██║╚██╔╝██║██╔═══╝    ██║   ", "██╔═══╝ ██╔══██║██║     "},
	{"██║     ██║  ██║╚██████╔╝██║ ╚═╝ ██║██║        ██║   ", "██║     ██║  ██║███████╗"},
	{"╚═╝     ╚═╝  ╚═╝ ╚═════╝ ╚═╝     ╚═╝╚═╝        ╚═╝   ", "╚═╝     ╚═╝  ╚═╝╚══════╝"},
}

// PrintBanner displays the ASCII art startup banner.
func PrintBanner() {
	fmt.Fprintln(Output)

	frame := color.New(color.FgCyan, color.Bold)
	promptColor := color.New(color.FgHiCyan)
	palColor := color.New(color.FgHiMagenta, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	white := color.New(color.FgWhite)
	dim := color.New(color.FgHiBlack)

	frame.Fprintln(Output, "╔═══════════════════════════════════════════════════════════════════════════════════╗")
	for _, line := range bannerLines {
		frame.Fprint(Output, "║  ")
		promptColor.Fprint(Output, line.prompt)
		palColor.Fprint(Output, line.pal)
		frame.Fprintln(Output, "   ║")
	}
	frame.Fprintln(Output, "╠═══════════════════════════════════════════════════════════════════════════════════╣")

	frame.Fprint(Output, "║  ")
	yellow.Fprint(Output, "✨ DUAL-PROVIDER CHAT")
	dim.Fprint(Output, "  │  ")
	palColor.Fprint(Output, "OPENROUTER + DASHSCOPE")
	dim.Fprint(Output, "  │  ")
	white.Fprint(Output, Version)
	dim.Fprint(Output, "                       ")
	frame.Fprintln(Output, "║")

	frame.Fprintln(Output, "╚═══════════════════════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(Output)
}
